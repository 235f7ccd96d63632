//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/internal/config"
	bookingEvents "github.com/shareit-platform/service-booking/internal/events"
	"github.com/shareit-platform/service-booking/internal/pkg/clock"
	"github.com/shareit-platform/service-booking/internal/pkg/database"
	"github.com/shareit-platform/service-booking/internal/pkg/kafka"
	"github.com/shareit-platform/service-booking/internal/repository"
)

const eventsTopic = "shareit.booking.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up service components.
type bookingStack struct {
	Clock    *clock.Manual
	Bookings *repository.GormBookingRepository
	Users    *application.UserService
	Items    *application.ItemService
	Booking  *application.BookingService
	Close    func()
}

// setupPostgres starts a PostgreSQL container, applies the embedded
// migrations and returns a connected GORM DB.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_shareit",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbCfg := config.DatabaseConfig{
		Host:     pgHost,
		Port:     pgPort.Int(),
		User:     "test",
		Password: "test",
		DBName:   "test_shareit",
		SSLMode:  "disable",
	}

	log := zap.NewNop()
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbCfg.DSN(), log)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbCfg.URL(), log))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, stopPostgres := setupPostgres(t)

	// confluent-local runs KRaft without ZooKeeper.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, eventsTopic)

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup: func() {
			if err := kafkaContainer.Terminate(ctx); err != nil {
				t.Logf("failed to terminate Kafka container: %v", err)
			}
			stopPostgres()
		},
	}
}

// setupBookingStack wires the services over GORM. With no brokers events are dropped.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string, start time.Time) *bookingStack {
	t.Helper()
	logger := zap.NewNop()
	clk := clock.NewManual(start)

	var publisher application.EventPublisher = application.NopPublisher{}
	closeFn := func() {}
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = bookingEvents.NewKafkaPublisher(producer, eventsTopic)
		closeFn = func() { _ = producer.Close() }
	}

	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	registry, err := application.NewStrategyRegistry(application.DefaultStrategies(bookingRepo, clk)...)
	require.NoError(t, err)

	return &bookingStack{
		Clock:    clk,
		Bookings: bookingRepo,
		Users:    application.NewUserService(userRepo, clk, logger),
		Items: application.NewItemService(itemRepo, commentRepo, userRepo, requestRepo, bookingRepo,
			application.NewCommentPolicy(bookingRepo), clk, publisher, logger),
		Booking: application.NewBookingService(bookingRepo, itemRepo, userRepo, registry, clk, publisher, logger),
		Close:   closeFn,
	}
}

// seedUser registers a user with a unique email.
func seedUser(t *testing.T, s *bookingStack, name string) int64 {
	t.Helper()
	u, err := s.Users.CreateUser(context.Background(), application.CreateUserRequest{
		Name:  name,
		Email: fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
	})
	require.NoError(t, err)
	return u.ID
}

// seedItem lists an available item for owner.
func seedItem(t *testing.T, s *bookingStack, ownerID int64, name string) int64 {
	t.Helper()
	on := true
	it, err := s.Items.CreateItem(context.Background(), ownerID, application.CreateItemRequest{
		Name: name, Description: name + " for rent", Available: &on,
	})
	require.NoError(t, err)
	return it.ID
}

// seedBooking books itemID for bookerID over [now+from, now+to).
func seedBooking(t *testing.T, s *bookingStack, bookerID, itemID int64, from, to time.Duration) int64 {
	t.Helper()
	now := s.Clock.Now()
	bk, err := s.Booking.CreateBooking(context.Background(), bookerID, application.CreateBookingRequest{
		ItemID: itemID, Start: now.Add(from), End: now.Add(to),
	})
	require.NoError(t, err)
	return bk.ID
}

// consumeEvents reads from a topic until every expected type has been seen.
func consumeEvents(t *testing.T, brokers []string, topic string, expected []string, timeout time.Duration) map[string]kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	want := make(map[string]bool, len(expected))
	for _, e := range expected {
		want[e] = true
	}
	seen := make(map[string]kafka.CloudEvent)
	for len(seen) < len(want) {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for events %v on topic %q, saw %d", expected, topic, len(seen))
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if want[ce.Type] {
			seen[ce.Type] = ce
		}
	}
	return seen
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
