// Package monitoring turns a running simulation into a web server that can be
// inspected and paused from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/eventsim/monitoring/web"
	"github.com/sarchlab/eventsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Status is a snapshot of the monitored simulation.
type Status struct {
	Now        float64 `json:"now"`
	QueueLen   int     `json:"queue_len"`
	Dispatched uint64  `json:"dispatched"`
	Running    bool    `json:"running"`
	Paused     bool    `json:"paused"`
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation. It has to be registered as a hook of the
// event manager.
type Monitor struct {
	portNumber int

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	// stateLock is held for writing while an event is being dispatched so
	// that the handlers never observe an action in the middle of Execute.
	stateLock  sync.RWMutex
	now        float64
	queueLen   int
	dispatched uint64
	running    bool

	// inEvent is only touched by the goroutine that runs the simulation.
	inEvent bool

	actions     map[string]any
	actionNames []string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		actions: make(map[string]any),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterAction makes an action visible under a name. The action is
// serialized when requested, so it should be registered by pointer.
func (m *Monitor) RegisterAction(name string, action any) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	if _, found := m.actions[name]; found {
		panic(fmt.Sprintf("action %s is already registered", name))
	}

	m.actions[name] = action
	m.actionNames = append(m.actionNames, name)
}

// Func updates the snapshot of the simulation and blocks the dispatching
// while the monitor is paused.
func (m *Monitor) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRunStart:
		m.stateLock.Lock()
		m.running = true
		m.updateSnapshot(ctx.Domain)
		m.stateLock.Unlock()
	case sim.HookPosBeforeEvent:
		m.pauseLock.Lock()
		m.pauseLock.Unlock()

		m.stateLock.Lock()
		m.inEvent = true
	case sim.HookPosAfterEvent:
		m.dispatched++
		m.updateSnapshot(ctx.Domain)
		m.inEvent = false
		m.stateLock.Unlock()
	case sim.HookPosRunEnd:
		// An action that panicked leaves the lock taken before the event.
		if !m.inEvent {
			m.stateLock.Lock()
		}

		m.inEvent = false
		m.running = false
		m.updateSnapshot(ctx.Domain)
		m.stateLock.Unlock()
	}
}

type floatTimeTeller interface {
	CurrentTimeAsFloat() float64
}

type queueLenReporter interface {
	Len() int
}

func (m *Monitor) updateSnapshot(domain sim.Hookable) {
	if tt, ok := domain.(floatTimeTeller); ok {
		m.now = tt.CurrentTimeAsFloat()
	}

	if q, ok := domain.(queueLenReporter); ok {
		m.queueLen = q.Len()
	}
}

// Pause prevents the simulation from dispatching more events. The event being
// dispatched, if any, completes first.
func (m *Monitor) Pause() {
	m.isPausedLock.Lock()
	defer m.isPausedLock.Unlock()

	if m.isPaused {
		return
	}

	m.pauseLock.Lock()
	m.isPaused = true
}

// Continue allows the simulation to dispatch events again.
func (m *Monitor) Continue() {
	m.isPausedLock.Lock()
	defer m.isPausedLock.Unlock()

	if !m.isPaused {
		return
	}

	m.pauseLock.Unlock()
	m.isPaused = false
}

// Status returns a snapshot of the simulation.
func (m *Monitor) Status() Status {
	m.isPausedLock.Lock()
	paused := m.isPaused
	m.isPausedLock.Unlock()

	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	return Status{
		Now:        m.now,
		QueueLen:   m.queueLen,
		Dispatched: m.dispatched,
		Running:    m.running,
		Paused:     paused,
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the HTTP handler that serves the monitoring API and the web
// page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.continueSimulation)
	r.HandleFunc("/api/now", m.currentTime)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/actions", m.listActions)
	r.HandleFunc("/api/action/{name}", m.actionDetails)
	r.HandleFunc("/api/field/{json}", m.fieldValue)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server in the background and
// returns the URL it listens on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := m.Handler()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueSimulation(w http.ResponseWriter, _ *http.Request) {
	m.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) currentTime(w http.ResponseWriter, _ *http.Request) {
	now := m.Status().Now
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.Status())
}

func (m *Monitor) listActions(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.RLock()
	names := make([]string, len(m.actionNames))
	copy(names, m.actionNames)
	m.stateLock.RUnlock()

	writeJSON(w, names)
}

func (m *Monitor) actionDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	action := m.findActionOr404(w, name)
	if action == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(action)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	ActionName string `json:"action_name,omitempty"`
	FieldName  string `json:"field_name,omitempty"`
}

func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	m.stateLock.RLock()
	defer m.stateLock.RUnlock()

	action := m.findActionOr404(w, req.ActionName)
	if action == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(action)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findActionOr404(w http.ResponseWriter, name string) any {
	action, found := m.actions[name]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Action not found"))
		dieOnErr(err)

		return nil
	}

	return action
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]*ProgressBar, len(m.progressBars))
	copy(bars, m.progressBars)
	m.progressBarsLock.Unlock()

	snapshots := make([]ProgressBarSnapshot, 0, len(bars))
	for _, b := range bars {
		snapshots = append(snapshots, b.Snapshot())
	}

	writeJSON(w, snapshots)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
