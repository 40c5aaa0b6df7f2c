package listing

import (
	"testing"
	"time"
)

func TestApply_DeterministicWins(t *testing.T) {
	l := Listing{
		Kind:        KindRetail,
		RetailPrice: StrPtr("$2,400"),
	}
	l.Apply(Update{RetailPrice: StrPtr("$99")})

	if *l.RetailPrice != "$2,400" {
		t.Errorf("existing retail price overwritten: %q", *l.RetailPrice)
	}
}

func TestApply_FillsMissingFields(t *testing.T) {
	l := Listing{Kind: KindAuction}
	l.Apply(Update{
		AuctionLow:  StrPtr("$800"),
		AuctionHigh: StrPtr("$1,200"),
		HTTPStatus:  200,
	})

	if l.AuctionLow == nil || *l.AuctionLow != "$800" {
		t.Errorf("AuctionLow = %v, want $800", l.AuctionLow)
	}
	if l.AuctionHigh == nil || *l.AuctionHigh != "$1,200" {
		t.Errorf("AuctionHigh = %v, want $1,200", l.AuctionHigh)
	}
	if l.AuctionReserve != nil {
		t.Error("AuctionReserve should stay nil")
	}
	if l.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d", l.HTTPStatus)
	}
}

func TestApply_KindUpgradeOnlyFromOther(t *testing.T) {
	l := Listing{Kind: KindOther}
	l.Apply(Update{Kind: KindPtr(KindAuction)})
	if l.Kind != KindAuction {
		t.Errorf("Kind = %q, want upgrade from other", l.Kind)
	}

	// A committed domain classification is immutable.
	l2 := Listing{Kind: KindRetail}
	l2.Apply(Update{Kind: KindPtr(KindAuction)})
	if l2.Kind != KindRetail {
		t.Errorf("Kind = %q, domain classification must not be overridden", l2.Kind)
	}
}

func TestApply_KindUpgradeCarriesConfidence(t *testing.T) {
	// A default-classified unknown domain: the upgrade must replace the low
	// placeholder confidence, not be blocked by it.
	l := Listing{Kind: KindOther, Confidence: 0.35}
	l.Apply(Update{Kind: KindPtr(KindAuction), Confidence: Float64Ptr(0.9)})
	if l.Kind != KindAuction {
		t.Errorf("Kind = %q, want auction", l.Kind)
	}
	if l.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want classifier's 0.9", l.Confidence)
	}

	// An unclassified listing is upgradeable too.
	l2 := Listing{}
	l2.Apply(Update{Kind: KindPtr(KindRetail), Confidence: Float64Ptr(0.8)})
	if l2.Kind != KindRetail || l2.Confidence != 0.8 {
		t.Errorf("got %q/%v, want retail/0.8", l2.Kind, l2.Confidence)
	}

	// Without an accompanying kind, a committed confidence still wins.
	l3 := Listing{Kind: KindRetail, Confidence: 0.75}
	l3.Apply(Update{Confidence: Float64Ptr(0.2)})
	if l3.Confidence != 0.75 {
		t.Errorf("Confidence = %v, committed value must not be overridden", l3.Confidence)
	}
}

func TestApply_LinkRewrite(t *testing.T) {
	l := Listing{Link: "https://www.chairish.com/collection/seating"}
	l.Apply(Update{Link: StrPtr("https://www.chairish.com/product/abc123")})
	if l.Link != "https://www.chairish.com/product/abc123" {
		t.Errorf("Link = %q", l.Link)
	}
}

func TestNormalize(t *testing.T) {
	run := AppraisalRun{
		Timestamp: time.Now(),
		Listings: []Listing{
			{Title: "no kind set"},
			{Kind: KindRetail, AuctionLow: StrPtr("$5")},
			{Kind: KindAuction, RetailPrice: StrPtr("$5")},
		},
	}
	run.Normalize()

	if run.Listings[0].Kind != KindOther {
		t.Errorf("empty kind normalized to %q, want other", run.Listings[0].Kind)
	}
	if run.Listings[1].AuctionLow != nil {
		t.Error("retail listing kept an auction field")
	}
	if run.Listings[2].RetailPrice != nil {
		t.Error("auction listing kept a retail field")
	}
}

func TestByKind_PreservesOrder(t *testing.T) {
	run := AppraisalRun{Listings: []Listing{
		{Title: "a", Kind: KindAuction},
		{Title: "b", Kind: KindRetail},
		{Title: "c", Kind: KindAuction},
	}}

	auctions := run.ByKind(KindAuction)
	if len(auctions) != 2 || auctions[0].Title != "a" || auctions[1].Title != "c" {
		t.Errorf("ByKind(auction) = %+v", auctions)
	}
}
