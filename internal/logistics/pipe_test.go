package logistics

import (
	"testing"

	"github.com/stadam23/orejita-planner/internal/model"
)

func TestNewPipe_RejectsDisconnectedRoutes(t *testing.T) {
	a := &Route{ID: 1, Src: 10, Dst: 20, Rate: Rate{M3Rate: 1}}
	b := &Route{ID: 2, Src: 99, Dst: 30, Rate: Rate{M3Rate: 2}}
	if _, err := NewPipe(1, []*Route{a, b}); err == nil {
		t.Fatal("expected error for disconnected route chain")
	}
}

func TestPipe_RateIsSumOfRoutes(t *testing.T) {
	a := &Route{ID: 1, Src: 10, Dst: 20, Rate: Rate{M3Rate: 1, CollateralRate: 0.01}}
	b := &Route{ID: 2, Src: 20, Dst: 30, Rate: Rate{M3Rate: 2, CollateralRate: 0.02}}
	p, err := NewPipe(1, []*Route{a, b})
	if err != nil {
		t.Fatalf("NewPipe: %v", err)
	}
	if p.Src() != 10 || p.Dst() != 30 {
		t.Errorf("Src/Dst = %d/%d, want 10/30", p.Src(), p.Dst())
	}
	rate := p.Rate()
	if rate.M3Rate != 3 || rate.CollateralRate != 0.03 {
		t.Errorf("Rate = %+v, want {3, 0.03}", rate)
	}
	locs := p.Locations()
	want := []model.LocationId{10, 20, 30}
	for i, l := range want {
		if locs[i] != l {
			t.Errorf("Locations()[%d] = %d, want %d", i, locs[i], l)
		}
	}
}

func TestPipe_DeliverAccumulates(t *testing.T) {
	a := &Route{ID: 1, Src: 10, Dst: 20}
	p, _ := NewPipe(1, []*Route{a})
	item := model.NewItem(500)
	p.Deliver(item, 5)
	p.Deliver(item, 3)
	if got := p.Delivered(item); got != 8 {
		t.Errorf("Delivered = %d, want 8", got)
	}
}
