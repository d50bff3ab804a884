package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"

	"github.com/cfblade77/Devforge-sub000/internal/clock"
	"github.com/cfblade77/Devforge-sub000/internal/domain"
	"github.com/cfblade77/Devforge-sub000/internal/hosting"
	"github.com/cfblade77/Devforge-sub000/internal/payment"
	"github.com/google/uuid"
)

type OrderRepository interface {
	FindOpenOrder(ctx context.Context, buyerID, gigID int64) (*domain.Order, error)
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	ReissueHandle(ctx context.Context, orderID int64, handle string) (domain.Order, error)
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	FindByPaymentHandle(ctx context.Context, handle string) (*domain.Order, error)
	MarkCompleted(ctx context.Context, orderID int64, finalHandle string) (domain.Order, error)
	AttachRepository(ctx context.Context, orderID int64, name, url string) (domain.Order, error)
}

type CatalogRepository interface {
	GetGig(ctx context.Context, gigID int64) (domain.Gig, error)
	GetUser(ctx context.Context, userID int64) (domain.User, error)
}

// PaymentIssuer never fails: gateway downtime yields a surrogate handle.
type PaymentIssuer interface {
	Issue(ctx context.Context, amountCents int64, currency string) (handle string, usedFallback bool)
}

type RepositoryProvisioner interface {
	Provision(ctx context.Context, token string, in hosting.ProvisionInput) (hosting.Result, error)
}

type CommitReader interface {
	ReadHistory(ctx context.Context, token, owner, repo string) ([]domain.Commit, error)
}

// OrderService coordinates the order lifecycle: create, confirm, provision,
// report. External side effects are bounded to their own step; a failed
// repository step never un-confirms an order.
type OrderService struct {
	orders      OrderRepository
	catalog     CatalogRepository
	payments    PaymentIssuer
	provisioner RepositoryProvisioner
	commits     CommitReader
	clock       clock.Clock
	logger      *log.Logger
}

func NewOrderService(
	orders OrderRepository,
	catalog CatalogRepository,
	payments PaymentIssuer,
	provisioner RepositoryProvisioner,
	commits CommitReader,
	clk clock.Clock,
	logger *log.Logger,
) *OrderService {
	if logger == nil {
		logger = log.Default()
	}
	return &OrderService{
		orders:      orders,
		catalog:     catalog,
		payments:    payments,
		provisioner: provisioner,
		commits:     commits,
		clock:       clk,
		logger:      logger,
	}
}

type CreateOrderInput struct {
	BuyerID int64
	GigID   int64
}

type CreateOrderResult struct {
	OrderID int64
	// PaymentHandle is the client form; a surrogate keeps its secret suffix
	// here while the store holds the core form.
	PaymentHandle     string
	ConfirmationToken string
	Reused            bool
	UsedFallback      bool
}

// CreateOrder starts checkout for a gig. A buyer who abandons checkout and
// retries gets their existing open order back with a freshly issued handle,
// never a duplicate.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	gig, err := s.catalog.GetGig(ctx, in.GigID)
	if err != nil {
		return CreateOrderResult{}, err
	}

	open, err := s.orders.FindOpenOrder(ctx, in.BuyerID, in.GigID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if open != nil {
		return s.reissueOpenOrder(ctx, *open, gig)
	}

	handle, fallback := s.payments.Issue(ctx, gig.PriceCents, gig.Currency)
	order := domain.Order{
		BuyerID:           in.BuyerID,
		GigID:             in.GigID,
		PriceCents:        gig.PriceCents,
		Currency:          gig.Currency,
		PaymentHandle:     payment.CoreHandle(handle),
		ConfirmationToken: newConfirmationToken(),
		CreatedAt:         s.clock.Now(),
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOpenOrder) {
			// Lost a double-submit race; the winner's order is the open one.
			open, findErr := s.orders.FindOpenOrder(ctx, in.BuyerID, in.GigID)
			if findErr == nil && open != nil {
				return s.reissueOpenOrder(ctx, *open, gig)
			}
		}
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{
		OrderID:           created.ID,
		PaymentHandle:     handle,
		ConfirmationToken: created.ConfirmationToken,
		UsedFallback:      fallback,
	}, nil
}

func (s *OrderService) reissueOpenOrder(ctx context.Context, open domain.Order, gig domain.Gig) (CreateOrderResult, error) {
	handle, fallback := s.payments.Issue(ctx, open.PriceCents, open.Currency)
	updated, err := s.orders.ReissueHandle(ctx, open.ID, payment.CoreHandle(handle))
	if err != nil {
		return CreateOrderResult{}, err
	}
	return CreateOrderResult{
		OrderID:           updated.ID,
		PaymentHandle:     handle,
		ConfirmationToken: updated.ConfirmationToken,
		Reused:            true,
		UsedFallback:      fallback,
	}, nil
}

type ConfirmOrderInput struct {
	OrderID           int64
	PaymentHandle     string
	ConfirmationToken string
}

// RepositoryStatus is the independently failable provisioning result nested
// in a confirmation response.
type RepositoryStatus struct {
	Created bool
	Name    string
	URL     string
	Error   string
}

type ConfirmOrderResult struct {
	OrderID    int64
	Completed  bool
	Repository RepositoryStatus
}

// ConfirmOrder marks the order completed and provisions its repository when
// the seller has a connected hosting account. Confirmation is idempotent and
// repository failures degrade the nested result instead of the confirmation.
func (s *OrderService) ConfirmOrder(ctx context.Context, in ConfirmOrderInput) (ConfirmOrderResult, error) {
	order, err := s.resolveOrder(ctx, in)
	if err != nil {
		return ConfirmOrderResult{}, err
	}

	if subtle.ConstantTimeCompare([]byte(in.ConfirmationToken), []byte(order.ConfirmationToken)) != 1 {
		return ConfirmOrderResult{}, domain.ErrInvalidConfirmationToken
	}

	finalHandle := order.PaymentHandle
	if in.PaymentHandle != "" {
		finalHandle = payment.CoreHandle(in.PaymentHandle)
	}

	completed, err := s.orders.MarkCompleted(ctx, order.ID, finalHandle)
	if err != nil {
		return ConfirmOrderResult{}, err
	}

	return ConfirmOrderResult{
		OrderID:    completed.ID,
		Completed:  true,
		Repository: s.ensureRepository(ctx, completed),
	}, nil
}

func (s *OrderService) resolveOrder(ctx context.Context, in ConfirmOrderInput) (domain.Order, error) {
	switch {
	case in.OrderID != 0:
		order, err := s.orders.GetByID(ctx, in.OrderID)
		if err != nil {
			return domain.Order{}, err
		}
		if order == nil {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return *order, nil
	case in.PaymentHandle != "":
		order, err := s.orders.FindByPaymentHandle(ctx, payment.CoreHandle(in.PaymentHandle))
		if err != nil {
			return domain.Order{}, err
		}
		if order == nil {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return *order, nil
	default:
		return domain.Order{}, domain.ErrConfirmationRefRequired
	}
}

// ensureRepository provisions the order's repository if it has none and the
// seller connected a hosting account. Every failure here is reported in the
// returned status, never as an operation error.
func (s *OrderService) ensureRepository(ctx context.Context, order domain.Order) RepositoryStatus {
	if order.RepoCreated {
		return RepositoryStatus{Created: true, Name: order.RepoName, URL: order.RepoURL}
	}

	gig, err := s.catalog.GetGig(ctx, order.GigID)
	if err != nil {
		s.logger.Printf("repository step skipped for order %d: %v", order.ID, err)
		return RepositoryStatus{Error: "gig lookup failed"}
	}
	seller, err := s.catalog.GetUser(ctx, gig.SellerID)
	if err != nil {
		s.logger.Printf("repository step skipped for order %d: %v", order.ID, err)
		return RepositoryStatus{Error: "seller lookup failed"}
	}
	if seller.HostingToken == "" {
		return RepositoryStatus{Error: domain.ErrCredentialsMissing.Error()}
	}

	res, err := s.provisioner.Provision(ctx, seller.HostingToken, s.provisionInput(ctx, order, gig))
	if err != nil {
		s.logger.Printf("provisioning failed for order %d: %v", order.ID, err)
		return RepositoryStatus{Error: err.Error()}
	}

	if _, err := s.orders.AttachRepository(ctx, order.ID, res.Name, res.URL); err != nil {
		// The repository exists on the provider; retried confirmation reaches
		// the same name and recovers through the conflict path.
		s.logger.Printf("repository %s created but not recorded for order %d: %v", res.Name, order.ID, err)
		return RepositoryStatus{Created: true, Name: res.Name, URL: res.URL, Error: "repository not recorded"}
	}

	return RepositoryStatus{Created: true, Name: res.Name, URL: res.URL}
}

func (s *OrderService) provisionInput(ctx context.Context, order domain.Order, gig domain.Gig) hosting.ProvisionInput {
	in := hosting.ProvisionInput{
		OrderID:      order.ID,
		GigTitle:     gig.Title,
		Category:     gig.Category,
		Description:  gig.Description,
		DeliveryDays: gig.DeliveryDays,
		Features:     gig.Features,
	}
	if buyer, err := s.catalog.GetUser(ctx, order.BuyerID); err == nil {
		in.BuyerName = buyer.Name
	}
	return in
}

type CreateRepositoryResult struct {
	RepoName string
	RepoURL  string
}

// CreateRepositoryForOrder is the seller-initiated provisioning path for
// orders confirmed before the seller connected a hosting account.
func (s *OrderService) CreateRepositoryForOrder(ctx context.Context, requesterID, orderID int64) (CreateRepositoryResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return CreateRepositoryResult{}, err
	}
	if order == nil {
		return CreateRepositoryResult{}, domain.ErrOrderNotFound
	}

	gig, err := s.catalog.GetGig(ctx, order.GigID)
	if err != nil {
		return CreateRepositoryResult{}, err
	}
	if gig.SellerID != requesterID {
		return CreateRepositoryResult{}, domain.ErrForbidden
	}
	if order.RepoCreated {
		return CreateRepositoryResult{}, domain.ErrRepositoryExists
	}

	seller, err := s.catalog.GetUser(ctx, gig.SellerID)
	if err != nil {
		return CreateRepositoryResult{}, err
	}
	if seller.HostingToken == "" {
		return CreateRepositoryResult{}, domain.ErrCredentialsMissing
	}

	res, err := s.provisioner.Provision(ctx, seller.HostingToken, s.provisionInput(ctx, *order, gig))
	if err != nil {
		return CreateRepositoryResult{}, fmt.Errorf("%w: %v", domain.ErrProvisioningFailed, err)
	}
	if _, err := s.orders.AttachRepository(ctx, order.ID, res.Name, res.URL); err != nil {
		return CreateRepositoryResult{}, err
	}

	return CreateRepositoryResult{RepoName: res.Name, RepoURL: res.URL}, nil
}

type OrderDetails struct {
	Order   domain.Order
	Commits []domain.Commit
	// CommitsError explains an empty commit list when the fetch failed.
	// Commit history is decoration; it never fails the request.
	CommitsError string
}

// GetOrderDetails returns the order and, when a repository exists, its recent
// commit history. Only the buyer and the gig's seller may look.
func (s *OrderService) GetOrderDetails(ctx context.Context, requesterID, orderID int64) (OrderDetails, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}
	if order == nil {
		return OrderDetails{}, domain.ErrOrderNotFound
	}

	gig, err := s.catalog.GetGig(ctx, order.GigID)
	if err != nil {
		return OrderDetails{}, err
	}
	if requesterID != order.BuyerID && requesterID != gig.SellerID {
		return OrderDetails{}, domain.ErrForbidden
	}

	details := OrderDetails{Order: *order, Commits: []domain.Commit{}}
	if !order.RepoCreated {
		return details, nil
	}

	owner, repo, ok := hosting.ParseRepoURL(order.RepoURL)
	if !ok {
		details.CommitsError = "repository url not parseable"
		return details, nil
	}
	seller, err := s.catalog.GetUser(ctx, gig.SellerID)
	if err != nil || seller.HostingToken == "" {
		details.CommitsError = "hosting credentials unavailable"
		return details, nil
	}

	commits, err := s.commits.ReadHistory(ctx, seller.HostingToken, owner, repo)
	if err != nil {
		s.logger.Printf("commit history unavailable for order %d: %v", order.ID, err)
		details.CommitsError = "commit history unavailable"
		return details, nil
	}
	details.Commits = commits
	return details, nil
}

func newConfirmationToken() string {
	return uuid.NewString()
}
