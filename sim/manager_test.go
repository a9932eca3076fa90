package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type lineRecorder struct {
	lines []string
}

func (r *lineRecorder) LogProgress(line string) {
	r.lines = append(r.lines, line)
}

// everyTen reschedules itself ten time units later until time 1000.
type everyTen struct {
	calls []int
}

func (a *everyTen) Execute(t int) Disposition[int] {
	a.calls = append(a.calls, t)

	if t >= 1000 {
		return Delete[int]()
	}

	return Reschedule(t + 10)
}

type stepper struct {
	steps int
}

func (a *stepper) Execute(t int) Disposition[int] {
	a.steps++
	return Reschedule(t + 1)
}

type funcHook struct {
	f func(ctx HookCtx)
}

func (h *funcHook) Func(ctx HookCtx) {
	h.f(ctx)
}

func hookFunc(f func(ctx HookCtx)) Hook {
	return &funcHook{f: f}
}

var _ = Describe("EventManager", func() {
	var (
		mockCtrl *gomock.Controller
		progress *lineRecorder
		manager  *EventManager[int]
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		progress = &lineRecorder{}
		manager = MakeManagerBuilder[int]().
			WithProgressLogger(progress).
			WithStopOnDrain().
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should spin on an empty queue by default", func() {
		Expect(NewEventManager[int]().DrainPolicy()).To(Equal(SpinOnDrain))
		Expect(manager.DrainPolicy()).To(Equal(StopOnDrain))
	})

	Context("when spinning on an empty queue", func() {
		var spinning *EventManager[int]

		BeforeEach(func() {
			spinning = MakeManagerBuilder[int]().
				WithProgressLogger(progress).
				Build()
		})

		It("should return at once if the start time reaches the max time", func() {
			done := make(chan struct{})

			go func() {
				defer close(done)
				spinning.Run(100, 100, 10)
				spinning.Run(200, 100, 10)
			}()

			Eventually(done).Should(BeClosed())
			Expect(spinning.CurrentTime()).To(Equal(200))
		})

		It("should leave through the time bound once the last event reaches max", func() {
			action := NewMockEventAction[int](mockCtrl)
			action.EXPECT().Execute(3).Return(Reschedule(10))
			action.EXPECT().Execute(10).Return(Delete[int]())

			spinning.Add(NewEvent(3, action))

			done := make(chan struct{})

			go func() {
				defer close(done)
				spinning.Run(0, 10, 5)
			}()

			Eventually(done).Should(BeClosed())
			Expect(spinning.CurrentTime()).To(Equal(10))
			Expect(spinning.Len()).To(Equal(0))
			Expect(progress.lines).To(Equal([]string{"t = 10"}))
		})
	})

	It("should end the run even if an action panics", func() {
		var positions []*HookPos
		manager.AcceptHook(hookFunc(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		manager.Add(NewEvent(3, ActionFunc[int](func(int) Disposition[int] {
			panic("broken action")
		})))

		Expect(func() { manager.Run(0, 10, 10) }).To(PanicWith("broken action"))
		Expect(positions).To(Equal([]*HookPos{
			HookPosRunStart, HookPosBeforeEvent, HookPosRunEnd,
		}))
		Expect(manager.CurrentTime()).To(Equal(3))
	})

	It("should run the rescheduling scenario", func() {
		var order []int
		recordOrder := hookFunc(func(ctx HookCtx) {
			if ctx.Pos == HookPosBeforeEvent {
				order = append(order, int(ctx.Item.(EventInfo).TimeAsFloat()))
			}
		})
		manager.AcceptHook(recordOrder)

		actions := make(map[int]*everyTen)
		for _, t := range []int{10, 5, 11, 2} {
			actions[t] = &everyTen{}
			manager.Add(NewEvent(t, actions[t]))
		}

		manager.Run(0, 1000, 100)

		Expect(order[:4]).To(Equal([]int{2, 5, 10, 11}))
		Expect(progress.lines).To(Equal([]string{
			"t = 100", "t = 200", "t = 300", "t = 400", "t = 500",
			"t = 600", "t = 700", "t = 800", "t = 900", "t = 1000",
		}))
		Expect(manager.CurrentTime()).To(Equal(1000))
		Expect(actions[10].calls).To(HaveLen(100))
		Expect(actions[11].calls).To(HaveLen(99))
		Expect(actions[2].calls).To(HaveLen(100))
		Expect(actions[5].calls).To(HaveLen(100))
		Expect(manager.Len()).To(Equal(3))

		for i := 1; i < len(order); i++ {
			Expect(order[i]).To(BeNumerically(">=", order[i-1]))
		}
	})

	It("should keep exactly one event per rescheduled action", func() {
		action := &stepper{}
		checks := 0
		manager.AcceptHook(hookFunc(func(ctx HookCtx) {
			if ctx.Pos != HookPosAfterEvent {
				return
			}

			checks++
			Expect(manager.Len()).To(Equal(1))
			next, _ := manager.Peek()
			Expect(next.Action()).To(BeIdenticalTo(action))
		}))

		manager.Add(NewEvent(0, action))
		manager.Run(0, 50, 10)

		Expect(checks).To(Equal(51))
		Expect(action.steps).To(Equal(51))
	})

	It("should move the same action into the new event", func() {
		action := NewMockEventAction[int](mockCtrl)
		gomock.InOrder(
			action.EXPECT().Execute(1).Return(Reschedule(4)),
			action.EXPECT().Execute(4).Return(Reschedule(9)),
			action.EXPECT().Execute(9).Return(Delete[int]()),
		)

		manager.AcceptHook(hookFunc(func(ctx HookCtx) {
			if ctx.Pos != HookPosAfterEvent || manager.Len() == 0 {
				return
			}

			next, _ := manager.Peek()
			Expect(next.Action()).To(BeIdenticalTo(action))
		}))

		manager.Add(NewEvent(1, action))
		manager.Run(0, 100, 10)

		Expect(manager.Len()).To(Equal(0))
	})

	It("should never dispatch a deleted action again", func() {
		deleted := NewMockEventAction[int](mockCtrl)
		deleted.EXPECT().Execute(3).Return(Delete[int]()).Times(1)

		ticker := NewMockEventAction[int](mockCtrl)
		ticker.EXPECT().
			Execute(gomock.Any()).
			DoAndReturn(func(t int) Disposition[int] {
				return Reschedule(t + 5)
			}).
			AnyTimes()

		manager.Add(NewEvent(3, deleted))
		manager.Add(NewEvent(0, ticker))
		manager.Run(0, 200, 50)
	})

	It("should execute an event popped beyond the max time", func() {
		action := NewMockEventAction[int](mockCtrl)
		action.EXPECT().Execute(5000).Return(Reschedule(6000))

		manager.Add(NewEvent(5000, action))
		manager.Run(0, 1000, 100)

		Expect(manager.CurrentTime()).To(Equal(5000))
		Expect(manager.Len()).To(Equal(1))
		Expect(progress.lines).To(Equal([]string{"t = 5000"}))
	})

	It("should not dispatch if the start time is already past the max time", func() {
		action := NewMockEventAction[int](mockCtrl)

		manager.Add(NewEvent(1, action))
		manager.Run(100, 100, 10)

		Expect(manager.Len()).To(Equal(1))
		Expect(manager.CurrentTime()).To(Equal(100))
	})

	It("should stop on drain when asked to", func() {
		action := NewMockEventAction[int](mockCtrl)
		action.EXPECT().Execute(1).Return(Delete[int]())

		manager.Add(NewEvent(1, action))
		manager.Run(0, 100, 10)

		Expect(manager.CurrentTime()).To(Equal(1))
	})

	It("should dispatch events added by an action", func() {
		child := NewMockEventAction[int](mockCtrl)
		child.EXPECT().Execute(7).Return(Delete[int]())

		parent := ActionFunc[int](func(t int) Disposition[int] {
			manager.Add(NewEvent(t+5, child))
			return Delete[int]()
		})

		manager.Add(NewEvent(2, parent))
		manager.Run(0, 100, 10)

		Expect(manager.Len()).To(Equal(0))
	})

	It("should invoke hooks around every event", func() {
		hook := NewMockHook(mockCtrl)
		action := NewMockEventAction[int](mockCtrl)
		manager.AcceptHook(hook)

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosRunStart))
				Expect(ctx.Item).To(Equal(0))
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosBeforeEvent))
				Expect(ctx.Item.(EventInfo).TimeAsFloat()).To(Equal(4.0))
				Expect(ctx.Detail).To(BeNil())
			}),
			action.EXPECT().Execute(4).Return(Delete[int]()),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosAfterEvent))
				Expect(ctx.Detail.(DispositionInfo).IsDelete()).To(BeTrue())
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(Equal(HookPosRunEnd))
				Expect(ctx.Item).To(Equal(4))
			}),
		)

		manager.Add(NewEvent(4, action))
		manager.Run(0, 10, 10)
	})

	It("should reject a hook registered twice", func() {
		hook := NewMockHook(mockCtrl)
		manager.AcceptHook(hook)

		Expect(func() { manager.AcceptHook(hook) }).To(Panic())
		Expect(manager.NumHooks()).To(Equal(1))
	})

	It("should register hooks given to the builder", func() {
		hook := NewMockHook(mockCtrl)

		m := MakeManagerBuilder[int]().WithHook(hook).Build()

		Expect(m.NumHooks()).To(Equal(1))
	})
})
