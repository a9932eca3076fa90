package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eventsim/sim"
)

var _ = Describe("DispositionCounter", func() {
	var (
		counter *DispositionCounter
		manager *sim.EventManager[sim.VTimeInSec]
	)

	BeforeEach(func() {
		counter = NewDispositionCounter()
		manager = buildManager(counter)
	})

	It("should count per action", func() {
		manager.Add(sim.NewEvent[sim.VTimeInSec](
			1, &namedAction{name: "mouse", steps: []sim.VTimeInSec{2, 3}}))
		manager.Add(sim.NewEvent[sim.VTimeInSec](2, &namedAction{name: "cat"}))

		manager.Run(0, 10, 100)

		Expect(counter.ActionNames()).To(Equal([]string{"mouse", "cat"}))
		Expect(counter.Count("mouse")).To(Equal(DispositionCount{
			Dispatched:  3,
			Deleted:     1,
			Rescheduled: 2,
		}))
		Expect(counter.Count("cat")).To(Equal(DispositionCount{
			Dispatched: 1,
			Deleted:    1,
		}))
		Expect(counter.Total()).To(Equal(DispositionCount{
			Dispatched:  4,
			Deleted:     2,
			Rescheduled: 2,
		}))
	})

	It("should return zeros for unknown actions", func() {
		Expect(counter.Count("dog")).To(Equal(DispositionCount{}))
		Expect(counter.ActionNames()).To(BeEmpty())
	})

	It("should ignore other hook positions", func() {
		counter.Func(sim.HookCtx{
			Pos:  sim.HookPosBeforeEvent,
			Item: sim.NewEvent[sim.VTimeInSec](1, &namedAction{name: "mouse"}),
		})

		Expect(counter.Total()).To(Equal(DispositionCount{}))
	})

	It("should count dispatches read from a recording", func() {
		counter.Add(&DispatchEntry{Action: "tick", Disposition: "reschedule@10"})
		counter.Add(&DispatchEntry{Action: "tick", Disposition: "delete"})
		counter.Add(&DispatchEntry{Action: "cat", Disposition: "delete"})

		Expect(counter.ActionNames()).To(Equal([]string{"tick", "cat"}))
		Expect(counter.Count("tick")).To(Equal(DispositionCount{
			Dispatched:  2,
			Deleted:     1,
			Rescheduled: 1,
		}))
		Expect(counter.Count("cat")).To(Equal(DispositionCount{
			Dispatched: 1,
			Deleted:    1,
		}))
	})
})
