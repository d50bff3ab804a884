package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/cfblade77/Devforge-sub000/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	newOrder := func(buyerID, gigID int64, handle, token string) domain.Order {
		return domain.Order{
			BuyerID:           buyerID,
			GigID:             gigID,
			PriceCents:        5000,
			Currency:          "USD",
			PaymentHandle:     handle,
			ConfirmationToken: token,
			CreatedAt:         time.Now().UTC(),
		}
	}

	t.Run("Create and FindOpenOrder round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "ghp_tok")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		created, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID == 0 || created.Completed || created.RepoCreated {
			t.Fatalf("unexpected created order %+v", created)
		}

		open, err := repo.FindOpenOrder(ctx, buyerID, gigID)
		if err != nil {
			t.Fatalf("find open: %v", err)
		}
		if open == nil || open.ID != created.ID {
			t.Fatalf("expected open order %d, got %+v", created.ID, open)
		}

		none, err := repo.FindOpenOrder(ctx, buyerID, gigID+1)
		if err != nil {
			t.Fatalf("find open: %v", err)
		}
		if none != nil {
			t.Fatalf("expected no open order, got %+v", none)
		}
	})

	t.Run("second open order for same pair is rejected", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		if _, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1")); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_2_b", "tok-2"))
		if err != domain.ErrDuplicateOpenOrder {
			t.Fatalf("expected ErrDuplicateOpenOrder, got %v", err)
		}
	})

	t.Run("completed order frees the pair for a new purchase", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		first, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1"))
		if err != nil {
			t.Fatalf("first create: %v", err)
		}
		if _, err := repo.MarkCompleted(ctx, first.ID, "mock_1_a"); err != nil {
			t.Fatalf("mark completed: %v", err)
		}

		if _, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_2_b", "tok-2")); err != nil {
			t.Fatalf("expected new purchase after completion, got %v", err)
		}
	})

	t.Run("ReissueHandle updates only open orders", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		created, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		updated, err := repo.ReissueHandle(ctx, created.ID, "mock_2_b")
		if err != nil {
			t.Fatalf("reissue: %v", err)
		}
		if updated.PaymentHandle != "mock_2_b" {
			t.Fatalf("expected reissued handle, got %s", updated.PaymentHandle)
		}
		if updated.ConfirmationToken != "tok-1" {
			t.Fatalf("confirmation token must survive reissue, got %s", updated.ConfirmationToken)
		}

		if _, err := repo.MarkCompleted(ctx, created.ID, "mock_2_b"); err != nil {
			t.Fatalf("mark completed: %v", err)
		}
		if _, err := repo.ReissueHandle(ctx, created.ID, "mock_3_c"); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound for completed order, got %v", err)
		}
	})

	t.Run("FindByPaymentHandle matches stored core handle", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		created, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_172000_abc", "tok-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		found, err := repo.FindByPaymentHandle(ctx, "mock_172000_abc")
		if err != nil {
			t.Fatalf("find by handle: %v", err)
		}
		if found == nil || found.ID != created.ID {
			t.Fatalf("expected order %d, got %+v", created.ID, found)
		}

		missing, err := repo.FindByPaymentHandle(ctx, "mock_172000_abc_secret_xyz")
		if err != nil {
			t.Fatalf("find by handle: %v", err)
		}
		if missing != nil {
			t.Fatalf("unstripped handle must not match, got %+v", missing)
		}
	})

	t.Run("MarkCompleted is idempotent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		created, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		first, err := repo.MarkCompleted(ctx, created.ID, "PROVIDER123")
		if err != nil {
			t.Fatalf("mark completed: %v", err)
		}
		if !first.Completed || first.CompletedAt == nil {
			t.Fatalf("unexpected completion state %+v", first)
		}
		if first.PaymentHandle != "PROVIDER123" {
			t.Fatalf("expected final handle stored, got %s", first.PaymentHandle)
		}

		second, err := repo.MarkCompleted(ctx, created.ID, "overwritten")
		if err != nil {
			t.Fatalf("second mark completed: %v", err)
		}
		if second.PaymentHandle != "PROVIDER123" {
			t.Fatalf("second completion must not write, got handle %s", second.PaymentHandle)
		}
		if !second.CompletedAt.Equal(*first.CompletedAt) {
			t.Fatalf("completed_at changed on re-complete")
		}

		if _, err := repo.MarkCompleted(ctx, created.ID+1000, "x"); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("AttachRepository is idempotent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		buyerID := testutil.InsertUser(t, ctx, pool, "Buyer B", "")
		sellerID := testutil.InsertUser(t, ctx, pool, "Seller X", "")
		gigID := testutil.InsertGig(t, ctx, pool, sellerID, "My Gig", 5000)

		created, err := repo.Create(ctx, newOrder(buyerID, gigID, "mock_1_a", "tok-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		first, err := repo.AttachRepository(ctx, created.ID, "devforge-my-gig-1", "https://github.com/sellerx/devforge-my-gig-1")
		if err != nil {
			t.Fatalf("attach: %v", err)
		}
		if !first.RepoCreated || first.RepoURL == "" {
			t.Fatalf("unexpected repo state %+v", first)
		}

		second, err := repo.AttachRepository(ctx, created.ID, "other-name", "https://example.com/other")
		if err != nil {
			t.Fatalf("second attach: %v", err)
		}
		if second.RepoName != "devforge-my-gig-1" || second.RepoURL != first.RepoURL {
			t.Fatalf("second attach must be a no-op, got %+v", second)
		}
	})
}
