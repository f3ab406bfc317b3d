package notify

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const (
	TopicWeekScored   = "prediction-league.week-scored"
	subjectWeekScored = "week.scored"
)

// NewGoChannel builds the in-process pub/sub shared by publisher and subscribers.
func NewGoChannel(logger *logging.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, NewLoggerAdapter(logger))
}

// Publisher implements usecase.ScoringNotifier over a watermill publisher.
type Publisher struct {
	pub    message.Publisher
	logger *logging.Logger
}

func NewPublisher(pub message.Publisher, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{pub: pub, logger: logger.Named("notify")}
}

func (p *Publisher) PublishWeekScored(ctx context.Context, event usecase.WeekScoredEvent) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal week scored event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("subject", subjectWeekScored)
	msg.Metadata.Set("run_id", event.RunID)
	msg.SetContext(ctx)

	if err := p.pub.Publish(TopicWeekScored, msg); err != nil {
		return fmt.Errorf("publish week scored event: %w", err)
	}
	p.logger.DebugContext(ctx, "week scored event published", "week", event.Week, "message_id", msg.UUID)
	return nil
}

// RunLogSubscriber logs every WeekScored event until ctx is done.
func RunLogSubscriber(ctx context.Context, sub message.Subscriber, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("notify")

	messages, err := sub.Subscribe(ctx, TopicWeekScored)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicWeekScored, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			handleWeekScored(logger, msg)
		}
	}
}

func handleWeekScored(logger *logging.Logger, msg *message.Message) {
	defer msg.Ack()

	var event usecase.WeekScoredEvent
	if err := sonic.Unmarshal(msg.Payload, &event); err != nil {
		logger.Error("drop malformed week scored event", "message_id", msg.UUID, "error", err)
		return
	}
	logger.Info("week scored",
		"run_id", event.RunID,
		"week", event.Week,
		"forced", event.Forced,
		"users_updated", event.UsersUpdated,
		"full_houses", event.FullHouseNames,
		"blanks", event.BlanksNames,
	)
}
