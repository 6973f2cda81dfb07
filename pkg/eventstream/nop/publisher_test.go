package nop_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pedalworks/catalogiq/pkg/eventstream"
	"github.com/pedalworks/catalogiq/pkg/eventstream/nop"
)

func TestNop(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Nop Publisher Suite")
}

var _ = Describe("Publisher", func() {
	var publisher *nop.Publisher

	BeforeEach(func() {
		publisher = nop.NewPublisher()
	})

	Describe("PublishIndexRun", func() {
		It("accepts a valid event", func() {
			event := &eventstream.IndexRunCompletedEvent{
				SchemaVersion: eventstream.SchemaVersionV1,
				EventType:     eventstream.EventTypeIndexRunCompleted,
				EventID:       "evt-1",
				EmittedAt:     time.Now().UTC(),
			}
			Expect(publisher.PublishIndexRun(context.Background(), event)).To(Succeed())
		})

		It("rejects a nil event", func() {
			err := publisher.PublishIndexRun(context.Background(), nil)
			Expect(err).To(MatchError(eventstream.ErrNilEvent))
		})
	})

	Describe("Close", func() {
		It("succeeds", func() {
			Expect(publisher.Close()).To(Succeed())
		})
	})
})
