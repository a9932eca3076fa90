package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eventsim/sim"
)

type ticker struct {
	Interval sim.VTimeInSec
	Limit    sim.VTimeInSec
	Count    int
}

func (t *ticker) Name() string {
	return "ticker"
}

func (t *ticker) Execute(now sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
	t.Count++

	if now+t.Interval > t.Limit {
		return sim.Delete[sim.VTimeInSec]()
	}

	return sim.Reschedule(now + t.Interval)
}

func buildManager(hooks ...sim.Hook) *sim.EventManager[sim.VTimeInSec] {
	b := sim.MakeManagerBuilder[sim.VTimeInSec]().
		WithProgressLogger(nil).
		WithStopOnDrain()

	for _, h := range hooks {
		b = b.WithHook(h)
	}

	return b.Build()
}

func get(handler http.Handler, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		action  *ticker
		manager *sim.EventManager[sim.VTimeInSec]
		handler http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		action = &ticker{Interval: 1, Limit: 10}
		m.RegisterAction("ticker", action)

		manager = buildManager(m)
		manager.Add(sim.NewEvent[sim.VTimeInSec](1, action))

		handler = m.Handler()
	})

	AfterEach(func() {
		m.Continue()
	})

	It("should fall back to a random port", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should panic on duplicated action names", func() {
		Expect(func() { m.RegisterAction("ticker", &ticker{}) }).To(Panic())
	})

	It("should keep a snapshot of the simulation", func() {
		manager.Run(0, 100, 100)

		Expect(m.Status()).To(Equal(Status{
			Now:        10,
			QueueLen:   0,
			Dispatched: 10,
			Running:    false,
			Paused:     false,
		}))
	})

	It("should hold the events while paused", func() {
		m.Pause()
		Expect(m.Status().Paused).To(BeTrue())

		var wg sync.WaitGroup
		wg.Add(1)

		go func() {
			defer wg.Done()
			manager.Run(0, 100, 100)
		}()

		Eventually(func() bool { return m.Status().Running }).Should(BeTrue())
		Consistently(func() uint64 { return m.Status().Dispatched },
			50*time.Millisecond).Should(Equal(uint64(0)))

		m.Continue()
		wg.Wait()

		Expect(m.Status().Dispatched).To(Equal(uint64(10)))
		Expect(action.Count).To(Equal(10))
	})

	It("should keep answering after an action panics", func() {
		manager.Add(sim.NewEvent[sim.VTimeInSec](0.5, sim.ActionFunc[sim.VTimeInSec](
			func(sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
				panic("broken action")
			})))

		Expect(func() { manager.Run(0, 100, 100) }).To(Panic())

		done := make(chan *httptest.ResponseRecorder)
		go func() {
			done <- get(handler, "/api/action/ticker")
		}()

		var rec *httptest.ResponseRecorder
		Eventually(done).Should(Receive(&rec))
		Expect(rec.Code).To(Equal(http.StatusOK))

		status := m.Status()
		Expect(status.Running).To(BeFalse())
		Expect(status.Now).To(Equal(0.5))
		Expect(status.Dispatched).To(Equal(uint64(0)))
	})

	It("should pause and continue over http", func() {
		Expect(get(handler, "/api/pause").Code).To(Equal(http.StatusOK))
		Expect(m.Status().Paused).To(BeTrue())

		Expect(get(handler, "/api/continue").Code).To(Equal(http.StatusOK))
		Expect(m.Status().Paused).To(BeFalse())
	})

	It("should report the current time", func() {
		manager.Run(0, 100, 100)

		rec := get(handler, "/api/now")

		Expect(rec.Body.String()).To(Equal(`{"now":10.0000000000}`))
	})

	It("should report the status", func() {
		manager.Run(0, 5, 100)

		rec := get(handler, "/api/status")

		status := Status{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &status)).To(Succeed())
		Expect(status.Now).To(Equal(5.0))
		Expect(status.QueueLen).To(Equal(1))
		Expect(status.Dispatched).To(Equal(uint64(5)))
	})

	It("should list the actions", func() {
		rec := get(handler, "/api/actions")

		Expect(rec.Body.String()).To(Equal(`["ticker"]`))
	})

	It("should serialize an action", func() {
		manager.Run(0, 100, 100)

		rec := get(handler, "/api/action/ticker")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(BeEmpty())
	})

	It("should return 404 for unknown actions", func() {
		rec := get(handler, "/api/action/mouse")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		rec := get(handler, "/api/field/notjson")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list the progress bars", func() {
		bar := m.CreateProgressBar("run", 10)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		rec := get(handler, "/api/progress")

		var bars []ProgressBarSnapshot
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("run"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)
		rec = get(handler, "/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should serve the web page", func() {
		rec := get(handler, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("eventsim monitor"))
	})
})

var _ = Describe("SimTimeProgress", func() {
	It("should follow the simulated time", func() {
		m := NewMonitor()
		p := NewSimTimeProgress(m, "run", 0, 20)
		manager := buildManager(p)
		manager.Add(sim.NewEvent[sim.VTimeInSec](
			1, &ticker{Interval: 0.5, Limit: 10}))

		manager.Run(0, 20, 100)

		snapshot := p.Bar().Snapshot()
		Expect(snapshot.Total).To(Equal(uint64(20)))
		Expect(snapshot.Finished).To(Equal(uint64(10)))
	})

	It("should not go past the total", func() {
		m := NewMonitor()
		p := NewSimTimeProgress(m, "run", 0, 5)
		manager := buildManager(p)
		manager.Add(sim.NewEvent[sim.VTimeInSec](
			1, &ticker{Interval: 1, Limit: 8}))

		manager.Run(0, 5, 100)

		Expect(p.Bar().Snapshot().Finished).To(Equal(uint64(5)))
	})
})
