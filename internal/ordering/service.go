package ordering

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"supply_order_back_end/internal/models"
	"supply_order_back_end/internal/store"
	"supply_order_back_end/internal/utils"
)

var tracer = otel.Tracer("supply_order_back_end/ordering")

// Archiver conserve le bon de commande généré et retourne son emplacement
type Archiver interface {
	ArchiveDocument(ctx context.Context, orderID string, doc *utils.RenderedDocument) (string, error)
}

// Notification est envoyée une fois par groupe, après écriture de ses lignes
type Notification struct {
	Group     models.OrderGroup
	Requester models.Employee
	Payload   models.CodePayload
	Document  *utils.RenderedDocument
}

type Notifier interface {
	NotifyOrder(ctx context.Context, n Notification) error
}

// Indexer alimente l'index de recherche du registre
type Indexer interface {
	IndexRows(ctx context.Context, rows []models.LedgerRow) error
	SearchOrderIDs(ctx context.Context, query string) ([]string, error)
}

type Publisher interface {
	PublishLedgerEvent(ctx context.Context, ev models.LedgerEvent) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Service orchestre l'envoi, la consultation et la réception des commandes.
// Archive, Notifier, Index, Events et Limiter sont facultatifs.
type Service struct {
	Products  store.ProductStore
	Employees store.EmployeeStore
	Ledger    store.LedgerStore
	Renderer  Renderer

	Archive  Archiver
	Notifier Notifier
	Index    Indexer
	Events   Publisher
	Limiter  RateLimiter

	Company CompanyInfo
	Now     func() time.Time
}

func NewService(products store.ProductStore, employees store.EmployeeStore, ledger store.LedgerStore, renderer Renderer) *Service {
	return &Service{
		Products:  products,
		Employees: employees,
		Ledger:    ledger,
		Renderer:  renderer,
		Now:       time.Now,
	}
}

// SubmitItem référence un produit du catalogue dans une demande d'envoi
type SubmitItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	IsUrgent  bool   `json:"isUrgent"`
}

type SubmitRequest struct {
	RequesterID string       `json:"requesterId"`
	Items       []SubmitItem `json:"items"`
	// Legacy envoie un seul bon (identifiant sans suffixe) ; refusé si plusieurs fournisseurs
	Legacy bool `json:"legacy"`
}

// SubmittedOrder résume un groupe envoyé
type SubmittedOrder struct {
	ID          string             `json:"id"`
	Supplier    string             `json:"supplier"`
	Subtotal    float64            `json:"subtotal"`
	ItemCount   int                `json:"itemCount"`
	RowsWritten int                `json:"rowsWritten"`
	DocumentURL string             `json:"documentUrl,omitempty"`
	Payload     models.CodePayload `json:"qrPayload"`
}

type SubmitResult struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Orders      []SubmittedOrder `json:"orders"`
	RowsWritten int              `json:"rowsWritten"`
}

// Submit valide la demande, regroupe par fournisseur, génère tous les documents puis
// écrit les lignes groupe par groupe. Une erreur d'écriture arrête l'envoi sans annuler
// les lignes déjà ajoutées (PartialSubmitError).
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "ordering.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("requester.id", req.RequesterID),
		attribute.Int("items", len(req.Items)),
		attribute.Bool("legacy", req.Legacy),
	)

	result := SubmitResult{}

	requester, lines, err := s.resolve(ctx, req)
	if err != nil {
		result.Message = err.Error()
		return result, err
	}

	now := s.now()
	base := BaseOrderID(now)

	var groups []models.OrderGroup
	if req.Legacy {
		g, err := SingleSupplierGroup(lines, base)
		if err != nil {
			result.Message = err.Error()
			return result, err
		}
		groups = []models.OrderGroup{g}
	} else {
		groups = GroupBySupplier(lines, base)
	}

	// Un envoi refusé à la validation ne consomme pas de quota
	if s.Limiter != nil {
		allowed, err := s.Limiter.Allow(ctx, requester.ID)
		if err != nil {
			log.Printf("⚠️ Limiteur indisponible, envoi autorisé: %v", err)
		} else if !allowed {
			result.Message = ErrRateLimited.Error()
			return result, ErrRateLimited
		}
	}

	// Tous les documents sont générés avant la première écriture
	prepared := make([]PreparedGroup, 0, len(groups))
	for _, g := range groups {
		p, err := PrepareDocument(ctx, s.Renderer, g, *requester, now, s.Company)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "document")
			result.Message = "échec de génération du bon de commande"
			return result, fmt.Errorf("préparation %s: %w", g.ID, err)
		}
		prepared = append(prepared, p)
	}

	orderer := requester.DisplayName()
	for _, p := range prepared {
		submitted, err := s.writeGroup(ctx, p, orderer, now)
		result.RowsWritten += submitted.RowsWritten
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "ledger")
			result.Orders = append(result.Orders, submitted)
			result.Message = fmt.Sprintf("envoi interrompu: %d ligne(s) enregistrée(s)", result.RowsWritten)
			return result, &PartialSubmitError{OrderID: p.Group.ID, RowsWritten: result.RowsWritten, Err: err}
		}

		s.afterWrite(ctx, p, *requester, &submitted)
		result.Orders = append(result.Orders, submitted)
		log.Printf("📦 Commande %s envoyée (%s, %d ligne(s))", p.Group.ID, p.Group.Supplier, submitted.RowsWritten)
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d commande(s) envoyée(s)", len(result.Orders))
	return result, nil
}

func (s *Service) resolve(ctx context.Context, req SubmitRequest) (*models.Employee, []models.CartLine, error) {
	if req.RequesterID == "" {
		return nil, nil, ErrMissingRequester
	}
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	requester, err := store.FindEmployee(ctx, s.Employees, req.RequesterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrUnknownRequester
	}
	if err != nil {
		return nil, nil, err
	}

	lines := make([]models.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, nil, &ValidationError{Field: "quantity", Message: fmt.Sprintf("quantité invalide pour %s", item.ProductID)}
		}
		p, err := s.Products.GetProduct(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, &ValidationError{Field: "productId", Message: fmt.Sprintf("produit inconnu: %s", item.ProductID)}
		}
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, models.CartLine{Product: *p, Quantity: item.Quantity, IsUrgent: item.IsUrgent})
	}
	return requester, lines, nil
}

func (s *Service) writeGroup(ctx context.Context, p PreparedGroup, orderer string, now time.Time) (SubmittedOrder, error) {
	submitted := SubmittedOrder{
		ID:        p.Group.ID,
		Supplier:  p.Group.Supplier,
		Subtotal:  p.Group.Subtotal,
		ItemCount: p.Group.ItemCount(),
		Payload:   p.Payload,
	}
	for i, line := range p.Group.Lines {
		row := models.LedgerRow{
			OrderID:     p.Group.ID,
			LineNo:      i + 1,
			Timestamp:   now,
			Orderer:     orderer,
			Supplier:    p.Group.Supplier,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Unit:        line.Product.Unit,
			IsUrgent:    line.IsUrgent,
			Status:      models.RowPending,
		}
		if err := s.Ledger.AppendRow(ctx, row); err != nil {
			return submitted, err
		}
		submitted.RowsWritten++
	}
	return submitted, nil
}

// afterWrite déclenche les effets secondaires du groupe ; leurs erreurs sont seulement journalisées
func (s *Service) afterWrite(ctx context.Context, p PreparedGroup, requester models.Employee, submitted *SubmittedOrder) {
	if s.Archive != nil && p.Document != nil {
		url, err := s.Archive.ArchiveDocument(ctx, p.Group.ID, p.Document)
		if err != nil {
			log.Printf("⚠️ Archivage du bon %s impossible: %v", p.Group.ID, err)
		} else {
			submitted.DocumentURL = url
		}
	}

	if s.Index != nil {
		if rows, err := s.Ledger.RowsByOrder(ctx, p.Group.ID); err == nil {
			if err := s.Index.IndexRows(ctx, rows); err != nil {
				log.Printf("⚠️ Indexation de %s impossible: %v", p.Group.ID, err)
			}
		}
	}

	if s.Notifier != nil {
		n := Notification{Group: p.Group, Requester: requester, Payload: p.Payload, Document: p.Document}
		if err := s.Notifier.NotifyOrder(ctx, n); err != nil {
			log.Printf("⚠️ Notification de %s non envoyée: %v", p.Group.ID, err)
		}
	}

	s.publish(ctx, models.LedgerEvent{
		Type:     models.EventOrderSubmitted,
		OrderID:  p.Group.ID,
		Supplier: p.Group.Supplier,
		Status:   models.OrderPending,
		Changed:  submitted.RowsWritten,
		At:       s.now(),
	})
}

// Receive réceptionne tout ou partie d'une commande puis notifie les pages ouvertes
func (s *Service) Receive(ctx context.Context, orderID string, names []string) (ReceiveResult, error) {
	ctx, span := tracer.Start(ctx, "ordering.Receive")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	result, err := Receive(ctx, s.Ledger, orderID, names, s.now())
	if result.Changed > 0 {
		if s.Index != nil {
			if ierr := s.Index.IndexRows(ctx, result.Rows); ierr != nil {
				log.Printf("⚠️ Réindexation de %s impossible: %v", orderID, ierr)
			}
		}
		s.publish(ctx, models.LedgerEvent{
			Type:    models.EventOrderReceived,
			OrderID: orderID,
			Status:  result.Status,
			Changed: result.Changed,
			At:      s.now(),
		})
	}
	if err != nil && !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, ErrNothingToReceive) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "receive")
	}
	return result, err
}

// History renvoie l'historique filtré par onglet et terme de recherche
func (s *Service) History(ctx context.Context, tab HistoryTab, query string) ([]models.OrderSummary, error) {
	rows, err := s.Ledger.ListRows(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" || s.Index == nil {
		return History(rows, tab, query), nil
	}

	ids, err := s.Index.SearchOrderIDs(ctx, query)
	if err != nil {
		log.Printf("⚠️ Recherche indexée indisponible, filtrage en mémoire: %v", err)
		return History(rows, tab, query), nil
	}
	hits := make(map[string]bool, len(ids))
	for _, id := range ids {
		hits[id] = true
	}
	var out []models.OrderSummary
	for _, summary := range History(rows, tab, "") {
		if hits[summary.ID] || matchesHistory(summary, query) {
			out = append(out, summary)
		}
	}
	return out, nil
}

// Pending renvoie les commandes ayant encore des lignes en attente
func (s *Service) Pending(ctx context.Context, query string) ([]models.OrderSummary, error) {
	rows, err := s.Ledger.ListRows(ctx)
	if err != nil {
		return nil, err
	}
	return PendingOrders(rows, query), nil
}

// Order renvoie une commande et son statut recalculé
func (s *Service) Order(ctx context.Context, orderID string) (*models.OrderSummary, error) {
	rows, err := s.Ledger.RowsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrOrderNotFound
	}
	summary := GroupRows(rows)[0]
	return &summary, nil
}

// Scan résout un texte scanné : identifiant exact d'abord, recherche sinon
func (s *Service) Scan(ctx context.Context, text string) ([]models.OrderSummary, error) {
	term := ParseScan(text)
	if term == "" {
		return nil, &ValidationError{Field: "code", Message: "code vide"}
	}
	if order, err := s.Order(ctx, term); err == nil {
		return []models.OrderSummary{*order}, nil
	} else if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}
	return s.History(ctx, TabAll, term)
}

// RebuildDocument régénère QR et bon de commande d'une commande déjà enregistrée
func (s *Service) RebuildDocument(ctx context.Context, orderID string) (PreparedGroup, error) {
	group, requester, date, err := s.groupFromLedger(ctx, orderID)
	if err != nil {
		return PreparedGroup{}, err
	}
	return PrepareDocument(ctx, s.Renderer, group, requester, date, s.Company)
}

// CodeFor retourne le contenu et l'image PNG du QR code d'une commande enregistrée
func (s *Service) CodeFor(ctx context.Context, orderID string) (models.CodePayload, []byte, error) {
	group, requester, date, err := s.groupFromLedger(ctx, orderID)
	if err != nil {
		return models.CodePayload{}, nil, err
	}
	payload := BuildCodePayload(group, requester, date)
	png, err := EncodeQRCode(payload)
	return payload, png, err
}

// groupFromLedger reconstitue le groupe d'une commande. Les prix viennent du
// catalogue courant, appariés par nom de produit.
func (s *Service) groupFromLedger(ctx context.Context, orderID string) (models.OrderGroup, models.Employee, time.Time, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return models.OrderGroup{}, models.Employee{}, time.Time{}, err
	}

	byName := make(map[string]models.Product)
	if products, err := s.Products.ListProducts(ctx); err == nil {
		for _, p := range products {
			byName[p.Name] = p
		}
	}

	group := models.OrderGroup{ID: order.ID, Supplier: order.Supplier}
	for _, row := range order.Items {
		product := byName[row.ProductName]
		product.Name = row.ProductName
		product.Unit = row.Unit
		product.Supplier = row.Supplier
		group.Lines = append(group.Lines, models.CartLine{Product: product, Quantity: row.Quantity, IsUrgent: row.IsUrgent})
	}
	group.Subtotal = Subtotal(group.Lines)

	return group, s.requesterFor(ctx, order.Orderer), order.Date, nil
}

func (s *Service) requesterFor(ctx context.Context, orderer string) models.Employee {
	if employees, err := s.Employees.ListEmployees(ctx); err == nil {
		for _, e := range employees {
			if e.DisplayName() == orderer {
				return e
			}
		}
	}
	return models.Employee{ID: orderer, CodeName: orderer}
}

func (s *Service) publish(ctx context.Context, ev models.LedgerEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishLedgerEvent(ctx, ev); err != nil {
		log.Printf("⚠️ Publication de l'événement %s impossible: %v", ev.OrderID, err)
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
