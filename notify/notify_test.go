package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"cluster-pricing/models"
	"cluster-pricing/utils"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	declared   []string
	declareErr error
	published  []amqp.Publishing
	keys       []string
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	if !durable {
		return amqp.Queue{}, fmt.Errorf("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func quietLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard, utils.LevelError)
}

func successReport() *models.RunReport {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.RunReport{
		RunID:      "run-42",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Stage:      models.StagePersisted,
		Status:     models.RunSuccess,
		Products:   1,
		Bookings:   2,
		Clusters:   1,
		Tables:     []models.TableResult{{Table: "pricing_insights", Rows: 1}},
		Insights: []models.PricingInsight{{
			ClusterMetrics: models.ClusterMetrics{ClusterKey: "Mar-2024_Suite_2-beds_5-stars_true", BookingRate: 1000},
			Recommendation: models.HighDemand,
		}},
	}
}

func TestNewRunCompletedEvent(t *testing.T) {
	ev := NewRunCompletedEvent(successReport())
	if ev.Stage != "Persisted" || ev.Status != "Success" {
		t.Fatalf("unexpected stage/status %s %s", ev.Stage, ev.Status)
	}
	if ev.StartedAt != "2024-03-01T12:00:00Z" || ev.FinishedAt != "2024-03-01T12:00:02Z" {
		t.Fatalf("unexpected timestamps %s %s", ev.StartedAt, ev.FinishedAt)
	}
	if len(ev.Recommendations) != 1 || ev.Recommendations[0].BookingRate != "1.000" {
		t.Fatalf("unexpected recommendations %+v", ev.Recommendations)
	}
}

func TestNewRunCompletedEventOmitsRecommendationsOnFailure(t *testing.T) {
	r := successReport()
	r.Status = models.RunPartialFailure
	if ev := NewRunCompletedEvent(r); len(ev.Recommendations) != 0 {
		t.Fatalf("partial runs must not publish recommendations")
	}
}

func TestPublishRun(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "pricing.insights.ready", quietLogger())
	if err != nil {
		t.Fatalf("NewPublisher error: %v", err)
	}
	defer p.Close()

	if err := p.PublishRun(context.Background(), successReport()); err != nil {
		t.Fatalf("PublishRun error: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "pricing.insights.ready" {
		t.Fatalf("queue not declared: %v", ch.declared)
	}
	if len(ch.published) != 1 || ch.keys[0] != "pricing.insights.ready" {
		t.Fatalf("expected one message routed to the queue")
	}

	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.MessageId != "run-42" || msg.ContentType != "application/json" {
		t.Fatalf("unexpected message properties %+v", msg)
	}
	var ev RunCompletedEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if ev.RunID != "run-42" || ev.Recommendations[0].Recommendation != string(models.HighDemand) {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestNewPublisherDeclareError(t *testing.T) {
	_, err := NewPublisher(&fakeChannel{declareErr: fmt.Errorf("access refused")}, "q", quietLogger())
	if err == nil {
		t.Fatalf("expected declare error")
	}
}
