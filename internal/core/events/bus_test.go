package events

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *EventBus

	BeforeEach(func() {
		bus = NewEventBus(slog.Default())
	})

	It("delivers published events to every subscriber asynchronously", func() {
		var calls int32
		handler := func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}
		bus.Subscribe(EventTypeFuelLogApproved, handler)
		bus.Subscribe(EventTypeFuelLogApproved, handler)

		Expect(bus.Publish(context.Background(), NewFuelLogApprovedEvent("f-1", "v-1", "d-1", nil))).To(Succeed())
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(Equal(int32(2)))
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), NewTripApprovedEvent("t-1", "v-1", "d-1"))).To(Succeed())
	})

	It("surfaces handler errors on synchronous publish", func() {
		bus.Subscribe(EventTypeMaintenanceCreated, func(ctx context.Context, e Event) error {
			return errors.New("boom")
		})
		err := bus.PublishSync(context.Background(), NewMaintenanceEvent(EventTypeMaintenanceCreated, "m-1", "v-1", "d-1"))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("stamps events with id, type and payload", func() {
		e := NewTripApprovedEvent("t-9", "v-2", "d-3")
		Expect(e.EventID()).NotTo(BeEmpty())
		Expect(e.EventType()).To(Equal(EventTypeTripApproved))
		Expect(e.Payload()).To(HaveKeyWithValue("trip_id", "t-9"))
	})

	It("isolates a panicking handler", func() {
		var calls int32
		bus.Subscribe(EventTypeMaintenanceCompleted, func(ctx context.Context, e Event) error {
			panic("bad subscriber")
		})
		bus.Subscribe(EventTypeMaintenanceCompleted, func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), NewMaintenanceEvent(EventTypeMaintenanceCompleted, "m-1", "v-1", "d-1"))).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&calls)).To(Equal(int32(1)))

		err := bus.PublishSync(context.Background(), NewMaintenanceEvent(EventTypeMaintenanceCompleted, "m-2", "v-1", "d-1"))
		Expect(err).To(MatchError(ContainSubstring("panicked")))
	})

	It("hands async subscribers a context that outlives the publisher", func() {
		done := make(chan error, 1)
		bus.Subscribe(EventTypeTripApproved, func(ctx context.Context, e Event) error {
			done <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, NewTripApprovedEvent("t-1", "v-1", "d-1"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
		Expect(bus.HandlerCount(EventTypeTripApproved)).To(Equal(1))
	})

	It("runs inline subscribers before Publish returns", func() {
		var inlineCalls, asyncCalls int32
		bus.SubscribeInline(EventTypeFuelLogApproved, func(ctx context.Context, e Event) error {
			atomic.AddInt32(&inlineCalls, 1)
			return errors.New("ignored")
		})
		bus.Subscribe(EventTypeFuelLogApproved, func(ctx context.Context, e Event) error {
			atomic.AddInt32(&asyncCalls, 1)
			return nil
		})

		Expect(bus.Publish(context.Background(), NewFuelLogApprovedEvent("f-1", "v-1", "d-1", nil))).To(Succeed())
		Expect(atomic.LoadInt32(&inlineCalls)).To(Equal(int32(1)))
		bus.Wait()
		Expect(atomic.LoadInt32(&asyncCalls)).To(Equal(int32(1)))
		Expect(bus.HandlerCount(EventTypeFuelLogApproved)).To(Equal(2))
	})
})
