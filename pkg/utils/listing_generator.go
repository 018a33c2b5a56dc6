package utils

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/pkg/money"
)

var (
	heroNames = []string{"Aria", "Brom", "Cyra", "Dorn", "Elia", "Fenn", "Gala", "Hask", "Iona", "Jory"}
	wallets   = []string{
		"0x1111111111111111111111111111111111111111",
		"0x2222222222222222222222222222222222222222",
		"0x3333333333333333333333333333333333333333",
		"0x4444444444444444444444444444444444444444",
		"0x5555555555555555555555555555555555555555",
	}
)

// ListingGenerator produces plausible marketplace event streams for demos and load tests.
// Every asset goes through create, zero or more price updates, then a sale or a cancellation.
type ListingGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	open      []*model.Listing
	nextAsset int
	now       func() time.Time
}

// NewListingGenerator creates a generator; equal seeds give equal streams apart from event ids.
func NewListingGenerator(seed int64) *ListingGenerator {
	return &ListingGenerator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// GenerateEvents returns count events continuing the generator's open listings.
func (g *ListingGenerator) GenerateEvents(count int) []*dto.ListingEventDTO {
	g.mu.Lock()
	defer g.mu.Unlock()

	events := make([]*dto.ListingEventDTO, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, g.next())
	}
	return events
}

// OpenListings returns the number of listings awaiting a sale or cancellation.
func (g *ListingGenerator) OpenListings() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.open)
}

func (g *ListingGenerator) next() *dto.ListingEventDTO {
	if len(g.open) == 0 || g.rng.Float64() < 0.35 {
		return g.create()
	}

	idx := g.rng.Intn(len(g.open))
	listing := g.open[idx]

	switch roll := g.rng.Float64(); {
	case roll < 0.4:
		listing.Price = g.reprice(listing.Price)
		return g.event(dto.EventListingUpdated, listing)
	case roll < 0.85:
		listing.Buyer = g.otherWallet(listing.Seller)
		g.close(idx)
		return g.event(dto.EventListingSold, listing)
	default:
		g.close(idx)
		return g.event(dto.EventListingCancelled, listing)
	}
}

func (g *ListingGenerator) create() *dto.ListingEventDTO {
	g.nextAsset++
	strength, agility, intelligence := 1+g.rng.Intn(20), 1+g.rng.Intn(20), 1+g.rng.Intn(20)
	level := 1 + g.rng.Intn(10)
	tier := model.RollRarity(g.rng.Float64() * 100)

	listing := &model.Listing{
		AssetID:    fmt.Sprint(g.nextAsset),
		Seller:     wallets[g.rng.Intn(len(wallets))],
		Price:      model.SuggestBasePrice(level, strength, agility, intelligence, &tier).String(),
		AssetName:  fmt.Sprintf("%s #%d", heroNames[g.rng.Intn(len(heroNames))], g.nextAsset),
		AssetLevel: level,
		AssetStats: map[string]int{"strength": strength, "agility": agility, "intelligence": intelligence},
		Rarity:     tier.String(),
	}
	g.open = append(g.open, listing)
	return g.event(dto.EventListingCreated, listing)
}

// reprice moves the price by -20%..+30%.
func (g *ListingGenerator) reprice(price string) string {
	current, err := money.Parse(price)
	if err != nil {
		return price
	}
	factor := decimal.NewFromFloat(0.8 + g.rng.Float64()*0.5).Round(4)
	next, err := money.FromEther(current.Ether().Mul(factor))
	if err != nil || next.IsZero() {
		return price
	}
	return next.String()
}

func (g *ListingGenerator) otherWallet(seller string) string {
	for {
		w := wallets[g.rng.Intn(len(wallets))]
		if w != seller {
			return w
		}
	}
}

func (g *ListingGenerator) close(idx int) {
	g.open = append(g.open[:idx], g.open[idx+1:]...)
}

func (g *ListingGenerator) event(kind dto.EventKind, listing *model.Listing) *dto.ListingEventDTO {
	snapshot := *listing
	if kind != dto.EventListingSold {
		snapshot.Buyer = ""
	}
	return dto.NewListingEvent(uuid.New().String(), kind, &snapshot, g.now())
}
