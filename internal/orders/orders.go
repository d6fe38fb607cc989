// Package orders manages stringing service orders in the graph store.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SainandaG/badmintion-stringing/internal/geo"
	"github.com/SainandaG/badmintion-stringing/internal/graph"
	"github.com/SainandaG/badmintion-stringing/internal/types"
)

// Node labels and relationship types used by the order graph.
const (
	labelCustomer = "Customer"
	labelOrder    = "Order"
	labelRacket   = "Racket"

	relPlaced     = "PLACED"
	relRelatesTo  = "RELATES_TO"
	relAssignedTo = "ASSIGNED_TO"
)

// Order statuses, in rough lifecycle order.
const (
	StatusPending   = "pending"
	StatusPickedUp  = "picked_up"
	StatusStringing = "stringing"
	StatusCompleted = "completed"
	StatusDelivered = "delivered"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusPickedUp:  true,
	StatusStringing: true,
	StatusCompleted: true,
	StatusDelivered: true,
}

// CreateOrderRequest is the input for placing an order.
type CreateOrderRequest struct {
	Customer string `json:"customer"`
	Phone    string `json:"phone,omitempty"`
	Issue    string `json:"issue"`
	Address  string `json:"address"`
	RacketID string `json:"racket_id,omitempty"`
}

// Order is a placed stringing order.
type Order struct {
	ID          types.ID `json:"order_id"`
	Customer    string   `json:"customer"`
	Issue       string   `json:"issue"`
	Address     string   `json:"address"`
	City        string   `json:"city,omitempty"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	RacketID    string   `json:"racket_id,omitempty"`
	RacketBrand string   `json:"racket_brand,omitempty"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	CompletedAt string   `json:"completed_at,omitempty"`
}

// PickupPoint returns the geocoded pickup coordinates.
func (o Order) PickupPoint() geo.Point {
	return geo.Point{Lat: o.Lat, Lon: o.Lon}
}

// OrderWithAgent joins an order to its assigned agent, if any.
type OrderWithAgent struct {
	Order
	AgentID   string `json:"agent_id,omitempty"`
	AgentName string `json:"agent_name,omitempty"`
}

// Service provides order operations on top of the graph client.
type Service struct {
	client   graph.GraphClient
	geocoder geo.Geocoder
	logger   *slog.Logger
}

// NewService creates the order service.
func NewService(client graph.GraphClient, geocoder geo.Geocoder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:   client,
		geocoder: geocoder,
		logger:   logger.With("component", "orders.service"),
	}
}

// CreateOrder geocodes the pickup address and persists the order graph:
// the customer, the order, the PLACED edge, and optionally the racket.
// A geocoding failure rejects the order.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	if strings.TrimSpace(req.Customer) == "" {
		return Order{}, types.NewError(types.ORDER_INVALID, "customer name is required")
	}
	if strings.TrimSpace(req.Issue) == "" {
		return Order{}, types.NewError(types.ORDER_INVALID, "issue description is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		return Order{}, types.NewError(types.ORDER_INVALID, "pickup address is required")
	}

	loc, err := s.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return Order{}, err
	}

	order := Order{
		ID:        types.NewID(),
		Customer:  req.Customer,
		Issue:     req.Issue,
		Address:   req.Address,
		City:      loc.City,
		Lat:       loc.Lat,
		Lon:       loc.Lon,
		RacketID:  req.RacketID,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelCustomer,
		KeyField: "name",
		KeyValue: req.Customer,
		OnCreate: map[string]any{"first_order_at": order.CreatedAt},
		Set:      map[string]any{"phone": req.Phone},
	}); err != nil {
		return Order{}, err
	}

	if err := s.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelOrder,
		KeyField: "order_id",
		KeyValue: order.ID.String(),
		OnCreate: map[string]any{"created_at": order.CreatedAt},
		Set: map[string]any{
			"issue":   order.Issue,
			"address": order.Address,
			"city":    order.City,
			"lat":     order.Lat,
			"lon":     order.Lon,
			"status":  order.Status,
		},
	}); err != nil {
		return Order{}, err
	}

	if err := s.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
		FromLabel: labelCustomer, FromKeyField: "name", FromKeyValue: req.Customer,
		ToLabel: labelOrder, ToKeyField: "order_id", ToKeyValue: order.ID.String(),
		Type:     relPlaced,
		OnCreate: map[string]any{"placed_at": order.CreatedAt},
	}); err != nil {
		return Order{}, err
	}

	if req.RacketID != "" {
		if err := s.client.UpsertNode(ctx, graph.NodeUpsert{
			Label:    labelRacket,
			KeyField: "racket_id",
			KeyValue: req.RacketID,
		}); err != nil {
			return Order{}, err
		}
		if err := s.client.UpsertRelationship(ctx, graph.RelationshipUpsert{
			FromLabel: labelOrder, FromKeyField: "order_id", FromKeyValue: order.ID.String(),
			ToLabel: labelRacket, ToKeyField: "racket_id", ToKeyValue: req.RacketID,
			Type: relRelatesTo,
		}); err != nil {
			return Order{}, err
		}
	}

	s.logger.Info("order created",
		"order_id", order.ID.String(),
		"customer", order.Customer,
		"city", order.City)
	return order, nil
}

// CustomerOrders lists a customer's orders, newest first, with the racket
// attached when one was registered.
func (s *Service) CustomerOrders(ctx context.Context, customer string) ([]Order, error) {
	cypher := `
		MATCH (c:Customer {name: $customer})-[:PLACED]->(o:Order)
		OPTIONAL MATCH (o)-[:RELATES_TO]->(r:Racket)
		RETURN o.order_id AS order_id,
		       o.issue AS issue,
		       o.address AS address,
		       o.city AS city,
		       o.lat AS lat,
		       o.lon AS lon,
		       o.status AS status,
		       o.created_at AS created_at,
		       o.completed_at AS completed_at,
		       r.racket_id AS racket_id,
		       r.brand AS racket_brand
		ORDER BY o.created_at DESC
	`
	result, err := s.client.Query(ctx, cypher, map[string]any{"customer": customer})
	if err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(result.Records))
	for _, row := range result.Records {
		order := orderFromRow(row)
		order.Customer = customer
		orders = append(orders, order)
	}
	return orders, nil
}

// GetOrder fetches a single order by id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (Order, error) {
	cypher := `
		MATCH (c:Customer)-[:PLACED]->(o:Order {order_id: $id})
		OPTIONAL MATCH (o)-[:RELATES_TO]->(r:Racket)
		RETURN o.order_id AS order_id,
		       c.name AS customer,
		       o.issue AS issue,
		       o.address AS address,
		       o.city AS city,
		       o.lat AS lat,
		       o.lon AS lon,
		       o.status AS status,
		       o.created_at AS created_at,
		       o.completed_at AS completed_at,
		       r.racket_id AS racket_id,
		       r.brand AS racket_brand
	`
	result, err := s.client.Query(ctx, cypher, map[string]any{"id": orderID})
	if err != nil {
		return Order{}, err
	}
	if len(result.Records) == 0 {
		return Order{}, types.NewError(types.ORDER_NOT_FOUND, fmt.Sprintf("order %s not found", orderID))
	}

	order := orderFromRow(result.Records[0])
	order.Customer, _ = result.Records[0]["customer"].(string)
	return order, nil
}

// UpdateStatus moves an order to a new status. Completion stamps
// completed_at.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !validStatuses[status] {
		return types.NewError(types.ORDER_INVALID, fmt.Sprintf("unknown status %q", status))
	}

	exists, err := s.orderExists(ctx, orderID)
	if err != nil {
		return err
	}
	if !exists {
		return types.NewError(types.ORDER_NOT_FOUND, fmt.Sprintf("order %s not found", orderID))
	}

	set := map[string]any{"status": status}
	if status == StatusCompleted {
		set["completed_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.client.UpsertNode(ctx, graph.NodeUpsert{
		Label:    labelOrder,
		KeyField: "order_id",
		KeyValue: orderID,
		Set:      set,
	}); err != nil {
		return err
	}

	s.logger.Info("order status updated", "order_id", orderID, "status", status)
	return nil
}

// OrdersWithAgents lists all orders joined to their assigned agent.
func (s *Service) OrdersWithAgents(ctx context.Context) ([]OrderWithAgent, error) {
	cypher := `
		MATCH (c:Customer)-[:PLACED]->(o:Order)
		OPTIONAL MATCH (a:Agent)-[:ASSIGNED_TO]->(o)
		RETURN o.order_id AS order_id,
		       c.name AS customer,
		       o.issue AS issue,
		       o.address AS address,
		       o.city AS city,
		       o.status AS status,
		       o.created_at AS created_at,
		       a.agent_id AS agent_id,
		       a.name AS agent_name
		ORDER BY o.created_at DESC
	`
	result, err := s.client.Query(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	orders := make([]OrderWithAgent, 0, len(result.Records))
	for _, row := range result.Records {
		entry := OrderWithAgent{Order: orderFromRow(row)}
		entry.Customer, _ = row["customer"].(string)
		entry.AgentID, _ = row["agent_id"].(string)
		entry.AgentName, _ = row["agent_name"].(string)
		orders = append(orders, entry)
	}
	return orders, nil
}

// SearchHistory finds past orders whose issue text contains term,
// case-insensitively. It backs the chat context fallback.
func (s *Service) SearchHistory(ctx context.Context, term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	cypher := `
		MATCH (o:Order)
		WHERE toLower(o.issue) CONTAINS toLower($term)
		RETURN o.issue AS issue, o.status AS status
		ORDER BY o.created_at DESC
		LIMIT $limit
	`
	result, err := s.client.Query(ctx, cypher, map[string]any{
		"term":  term,
		"limit": int64(limit),
	})
	if err != nil {
		return nil, err
	}

	records := make([]string, 0, len(result.Records))
	for _, row := range result.Records {
		issue, _ := row["issue"].(string)
		status, _ := row["status"].(string)
		records = append(records, fmt.Sprintf("%s (%s)", issue, status))
	}
	return records, nil
}

func (s *Service) orderExists(ctx context.Context, orderID string) (bool, error) {
	result, err := s.client.Query(ctx,
		`MATCH (o:Order {order_id: $id}) RETURN o.order_id AS order_id`,
		map[string]any{"id": orderID})
	if err != nil {
		return false, err
	}
	return len(result.Records) > 0, nil
}

func orderFromRow(row map[string]any) Order {
	var order Order

	if id, ok := row["order_id"].(string); ok {
		if parsed, err := types.ParseID(id); err == nil {
			order.ID = parsed
		}
	}
	order.Issue, _ = row["issue"].(string)
	order.Address, _ = row["address"].(string)
	order.City, _ = row["city"].(string)
	order.Lat, _ = row["lat"].(float64)
	order.Lon, _ = row["lon"].(float64)
	order.Status, _ = row["status"].(string)
	order.CreatedAt, _ = row["created_at"].(string)
	order.CompletedAt, _ = row["completed_at"].(string)
	order.RacketID, _ = row["racket_id"].(string)
	order.RacketBrand, _ = row["racket_brand"].(string)
	return order
}
