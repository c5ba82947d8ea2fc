package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	firestoreapi "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
)

const serviceName = "firestore"

// NewClient opens a Firestore client through the Firebase Admin SDK.
// An empty credentialsFile falls back to application default credentials.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestoreapi.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore client: %w", err)
	}
	return client, nil
}

// Store reads and mutates the checkout and inventory collections
type Store struct {
	client    *firestoreapi.Client
	checkouts string
	inventory string
	loc       *time.Location
	tracer    trace.Tracer
	log       *slog.Logger
}

// NewStore wires both collections. loc is used for zone-less date strings.
func NewStore(client *firestoreapi.Client, checkoutsCollection, inventoryCollection string, loc *time.Location) *Store {
	return &Store{
		client:    client,
		checkouts: checkoutsCollection,
		inventory: inventoryCollection,
		loc:       loc,
		tracer:    otel.Tracer("scanimals/firestore"),
		log:       logger.WithComponent(serviceName),
	}
}

var (
	_ repository.CheckoutFeed        = (*Store)(nil)
	_ repository.CheckoutRepository  = (*Store)(nil)
	_ repository.InventoryRepository = (*Store)(nil)
)

// Subscribe listens to the checkout collection. Each emitted snapshot holds
// the whole collection.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func([]domain.CheckoutRecord)) error {
	logger.ExternalServiceCall(serviceName, "Snapshots", "collection", s.checkouts)

	it := s.client.Collection(s.checkouts).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if isCancellation(ctx, err) {
				s.log.Info("Checkout subscription released", "collection", s.checkouts)
				return nil
			}
			logger.ExternalServiceResult(serviceName, "Snapshots", err, "collection", s.checkouts)
			return fmt.Errorf("checkout snapshot stream failed: %w", err)
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			logger.ExternalServiceResult(serviceName, "Snapshots", err, "collection", s.checkouts)
			return fmt.Errorf("failed to read checkout snapshot: %w", err)
		}

		records := make([]domain.CheckoutRecord, 0, len(docs))
		for _, doc := range docs {
			records = append(records, RecordFromDocument(doc.Ref.ID, doc.Data(), s.loc))
		}
		s.log.Debug("Checkout snapshot received", "collection", s.checkouts, "records", len(records), "read_time", snap.ReadTime)
		onSnapshot(records)
	}
}

// ListCheckouts reads the checkout collection once
func (s *Store) ListCheckouts(ctx context.Context) ([]domain.CheckoutRecord, error) {
	ctx, span := s.tracer.Start(ctx, "firestore.ListCheckouts", trace.WithAttributes(attribute.String("collection", s.checkouts)))
	defer span.End()

	logger.ExternalServiceCall(serviceName, "ListCheckouts", "collection", s.checkouts)
	var records []domain.CheckoutRecord
	err := s.each(ctx, s.checkouts, func(doc *firestoreapi.DocumentSnapshot) {
		records = append(records, RecordFromDocument(doc.Ref.ID, doc.Data(), s.loc))
	})
	logger.ExternalServiceResult(serviceName, "ListCheckouts", err, "records", len(records))
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to list checkouts: %w", err)
	}
	return records, nil
}

// ListInventory reads the inventory collection once
func (s *Store) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	ctx, span := s.tracer.Start(ctx, "firestore.ListInventory", trace.WithAttributes(attribute.String("collection", s.inventory)))
	defer span.End()

	logger.ExternalServiceCall(serviceName, "ListInventory", "collection", s.inventory)
	items := []domain.InventoryItem{}
	err := s.each(ctx, s.inventory, func(doc *firestoreapi.DocumentSnapshot) {
		items = append(items, InventoryFromDocument(doc.Ref.ID, doc.Data()))
	})
	logger.ExternalServiceResult(serviceName, "ListInventory", err, "items", len(items))
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// CheckIn removes the checkout document
func (s *Store) CheckIn(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "firestore.CheckIn", trace.WithAttributes(attribute.String("checkout_id", id)))
	defer span.End()

	logger.ExternalServiceCall(serviceName, "CheckIn", "id", id)
	_, err := s.client.Collection(s.checkouts).Doc(id).Delete(ctx, firestoreapi.Exists)
	logger.ExternalServiceResult(serviceName, "CheckIn", err, "id", id)
	if err != nil {
		recordSpanError(span, err)
		return translate(err, "check in "+id)
	}
	return nil
}

// SetOverride writes the two stored flags for an override
func (s *Store) SetOverride(ctx context.Context, id string, override domain.Override) error {
	ctx, span := s.tracer.Start(ctx, "firestore.SetOverride", trace.WithAttributes(
		attribute.String("checkout_id", id),
		attribute.String("override", override.String()),
	))
	defer span.End()

	fields := OverrideUpdates(override)
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	updates := make([]firestoreapi.Update, 0, len(paths))
	for _, p := range paths {
		updates = append(updates, firestoreapi.Update{Path: p, Value: fields[p]})
	}

	logger.ExternalServiceCall(serviceName, "SetOverride", "id", id, "override", override.String())
	_, err := s.client.Collection(s.checkouts).Doc(id).Update(ctx, updates)
	logger.ExternalServiceResult(serviceName, "SetOverride", err, "id", id)
	if err != nil {
		recordSpanError(span, err)
		return translate(err, "set override on "+id)
	}
	return nil
}

func (s *Store) each(ctx context.Context, collection string, fn func(*firestoreapi.DocumentSnapshot)) error {
	it := s.client.Collection(collection).Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		fn(doc)
	}
}

func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled)
}

func translate(err error, op string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
}
