package postgres

import (
	"context"
	"testing"

	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/cfblade77/Devforge-sub000/internal/testutil"
)

func TestCatalogRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCatalogRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("GetGig returns gig or ErrGigNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "ghp_tok")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		gig, err := repo.GetGig(ctx, gigID)
		if err != nil {
			t.Fatalf("get gig: %v", err)
		}
		if gig.SellerID != sellerID || gig.Title != "My Gig" || gig.PriceCents != 5000 {
			t.Fatalf("unexpected gig %+v", gig)
		}
		if len(gig.Features) != 2 {
			t.Fatalf("expected features loaded, got %v", gig.Features)
		}

		if _, err := repo.GetGig(ctx, gigID+1000); err != domain.ErrGigNotFound {
			t.Fatalf("expected ErrGigNotFound, got %v", err)
		}
	})

	t.Run("GetUser returns hosting token when connected", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		connected := testutil.InsertUser(t, ctx, pool, "Seller X", "ghp_tok")
		bare := testutil.InsertUser(t, ctx, pool, "Buyer B", "")

		u, err := repo.GetUser(ctx, connected)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if u.HostingToken != "ghp_tok" {
			t.Fatalf("expected hosting token, got %q", u.HostingToken)
		}

		u, err = repo.GetUser(ctx, bare)
		if err != nil {
			t.Fatalf("get user: %v", err)
		}
		if u.HostingToken != "" {
			t.Fatalf("expected empty token, got %q", u.HostingToken)
		}

		if _, err := repo.GetUser(ctx, bare+1000); err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}
