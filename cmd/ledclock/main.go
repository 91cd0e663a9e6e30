// Command ledclock runs a multiplexed 7-segment LED clock kept by an
// RTC-8564 on I2C, with two set buttons and a buzzer.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/ledclock/internal/display"
	"github.com/sweeney/ledclock/internal/gpio"
	"github.com/sweeney/ledclock/internal/logic"
	"github.com/sweeney/ledclock/internal/mqtt"
	"github.com/sweeney/ledclock/internal/rtc"
	"github.com/sweeney/ledclock/internal/scheduler"
	"github.com/sweeney/ledclock/internal/status"
	"github.com/sweeney/ledclock/internal/web"
)

type config struct {
	i2c       string
	chip      string
	pinS1     int
	pinS2     int
	pinINT    int
	pinBuzzer int
	segPins   []int
	digitPins []int
	tick      time.Duration
	mux       time.Duration
	broker    string
	httpAddr  string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.i2c, "i2c", "", `I2C bus name, e.g. "1" ("" for the first bus found)`)
	flag.StringVar(&cfg.chip, "gpiochip", gpio.DefaultChip, "GPIO chip")
	flag.IntVar(&cfg.pinS1, "pin-s1", gpio.DefaultPinS1, "BCM pin number for button S1")
	flag.IntVar(&cfg.pinS2, "pin-s2", gpio.DefaultPinS2, "BCM pin number for button S2")
	flag.IntVar(&cfg.pinINT, "pin-int", gpio.DefaultPinINT, "BCM pin number for the RTC /INT output (-1 for a software 1 Hz heartbeat)")
	flag.IntVar(&cfg.pinBuzzer, "pin-buzzer", gpio.DefaultPinBuzzer, "BCM pin number for the buzzer")
	segPins := flag.String("pins-seg", joinPins(gpio.DefaultSegmentPins), "segment pins a,b,c,d,e,f,g,dp")
	digitPins := flag.String("pins-digit", joinPins(gpio.DefaultDigitPins), "digit select pins, slot 0 first")
	flag.DurationVar(&cfg.tick, "tick", time.Millisecond, "clock tick period")
	flag.DurationVar(&cfg.mux, "mux", time.Millisecond, "display multiplex period per digit")
	flag.StringVar(&cfg.broker, "broker", "", "MQTT broker address for the event mirror (empty to disable)")
	flag.StringVar(&cfg.httpAddr, "http", "", "HTTP status address (empty to disable)")
	printTime := flag.Bool("print-time", false, "Print the RTC time and exit")

	flag.Parse()

	var err error
	if cfg.segPins, err = parsePins(*segPins, 8); err != nil {
		log.Fatalf("fatal: -pins-seg: %v", err)
	}
	if cfg.digitPins, err = parsePins(*digitPins, display.Digits); err != nil {
		log.Fatalf("fatal: -pins-digit: %v", err)
	}

	if *printTime {
		err = runPrintTime(cfg.i2c, os.Stdout)
	} else {
		err = run(cfg)
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func runPrintTime(bus string, w io.Writer) error {
	b, err := rtc.OpenBus(bus)
	if err != nil {
		return err
	}
	defer b.Close()
	return printTime(rtc.New(b), w)
}

// printTime writes one line with the RTC time, date and VL flag.
func printTime(dev logic.RTC, w io.Writer) error {
	t, err := dev.ReadTime()
	if err != nil {
		return err
	}
	d, err := dev.ReadDate()
	if err != nil {
		return err
	}
	lost, err := dev.DetectPowerLoss()
	if err != nil {
		return err
	}
	vl := "ok"
	if lost {
		vl = "POWER_LOSS"
	}
	_, err = fmt.Fprintf(w, "TIME: %s, DATE: %s, VL: %s\n", t, d, vl)
	return err
}

func run(cfg config) error {
	bus, err := rtc.OpenBus(cfg.i2c)
	if err != nil {
		return fmt.Errorf("init i2c: %w", err)
	}
	defer bus.Close()

	buttons, err := gpio.NewRealReader(cfg.chip, cfg.pinS1, cfg.pinS2)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	segments, err := gpio.NewSegmentDriver(cfg.chip, cfg.segPins, cfg.digitPins)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer segments.Close()

	tone, err := gpio.NewToneLine(cfg.chip, cfg.pinBuzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer tone.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		TickUs:    cfg.tick.Microseconds(),
		MuxUs:     cfg.mux.Microseconds(),
		I2CBus:    bus.String(),
		Heartbeat: heartbeatLabel(cfg.pinINT),
		Broker:    cfg.broker,
		HTTPAddr:  cfg.httpAddr,
	})

	var (
		publisher mqtt.Publisher
		conn      mqtt.ConnectionStatus
		queue     *mqtt.Queue
	)
	if cfg.broker != "" {
		p := mqtt.NewRealPublisher(cfg.broker)
		defer p.Close()
		publisher, conn = p, p
		queue = mqtt.NewQueue(p, eventQueueSize)
	}

	clock := logic.NewClock(rtc.New(bus))
	sink := &eventLog{}
	if queue != nil {
		sink.next = queue
	}
	for _, ev := range clock.Boot(time.Now()) {
		sink.Publish(ev)
	}

	sched := scheduler.New(clock, scheduler.Config{}, buttons, tone, segments, sink)
	sched.SetStateSink(tracker)
	tracker.SetClock(clock.Snapshot())

	if publisher != nil {
		publishSystem(publisher, tracker, "STARTUP", "")
	}

	var softBeat <-chan time.Time
	if cfg.pinINT >= 0 {
		watcher, err := gpio.WatchHeartbeat(cfg.chip, cfg.pinINT, sched.Heartbeat)
		if err != nil {
			return fmt.Errorf("init rtc interrupt: %w", err)
		}
		defer watcher.Close()
	} else {
		beat := time.NewTicker(time.Second)
		defer beat.Stop()
		softBeat = beat.C
	}

	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	tick := time.NewTicker(cfg.tick)
	defer tick.Stop()
	mux := time.NewTicker(cfg.mux)
	defer mux.Stop()
	statusTick := time.NewTicker(5 * time.Second)
	defer statusTick.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("started: i2c=%s tick=%v mux=%v heartbeat=%s broker=%q",
		bus, cfg.tick, cfg.mux, heartbeatLabel(cfg.pinINT), cfg.broker)

	reason, err := runLoops(context.Background(), loops{
		sched:      sched,
		queue:      queue,
		tracker:    tracker,
		conn:       conn,
		tick:       tick.C,
		mux:        mux.C,
		heartbeat:  softBeat,
		statusTick: statusTick.C,
		sig:        sigCh,
	})
	if publisher != nil {
		publishSystem(publisher, tracker, "SHUTDOWN", reason)
	}
	return err
}

// eventQueueSize bounds the events waiting for the broker.
const eventQueueSize = 32

// loops are the goroutines of a running clock. Nil channels disable the
// optional ones.
type loops struct {
	sched      *scheduler.Scheduler
	queue      *mqtt.Queue
	tracker    *status.Tracker
	conn       mqtt.ConnectionStatus
	tick       <-chan time.Time
	mux        <-chan time.Time
	heartbeat  <-chan time.Time // software heartbeat
	statusTick <-chan time.Time
	sig        <-chan os.Signal
}

// runLoops runs every loop until a signal arrives or ctx is done. It
// returns the name of the signal that stopped it.
func runLoops(ctx context.Context, l loops) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reason string
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case s := <-l.sig:
			log.Printf("received %v, shutting down", s)
			reason = signalName(s)
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	g.Go(func() error { return l.sched.Run(ctx, l.tick) })
	g.Go(func() error { return l.sched.RunMux(ctx, l.mux) })
	if l.heartbeat != nil {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-l.heartbeat:
					l.sched.Heartbeat()
				}
			}
		})
	}
	if l.queue != nil {
		g.Go(func() error { return l.queue.Run(ctx) })
	}
	if l.tracker != nil && l.conn != nil {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-l.statusTick:
					l.tracker.SetMQTTConnected(l.conn.IsConnected())
				}
			}
		})
	}

	err := g.Wait()
	return reason, err
}

// eventLog logs every clock event and forwards it to next when set.
type eventLog struct {
	next scheduler.EventSink
}

func (e *eventLog) Publish(ev logic.Event) bool {
	switch ev.Type {
	case logic.EventBusError:
		// The scheduler already logged the error.
	case logic.EventModeChange:
		log.Printf("event: %s %s -> %s", ev.Type, ev.Detail, ev.Mode)
	default:
		log.Printf("event: %s %s (time=%s date=%s)", ev.Type, ev.Detail, ev.Time, ev.Date)
	}
	if e.next == nil {
		return true
	}
	if !e.next.Publish(ev) {
		log.Printf("event queue full, dropped %s", ev.Type)
		return false
	}
	return true
}

func publishSystem(p mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	ev := mqtt.SystemEvent{
		Timestamp:  time.Now(),
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), event, reason),
	}
	if err := p.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", strings.ToLower(event), err)
	} else {
		log.Printf("published %s event", strings.ToLower(event))
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func heartbeatLabel(pinINT int) string {
	if pinINT < 0 {
		return "software"
	}
	return fmt.Sprintf("gpio %d", pinINT)
}

// parsePins parses a comma-separated list of exactly n pin numbers.
func parsePins(s string, n int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("need %d pins, got %d", n, len(fields))
	}
	pins := make([]int, n)
	seen := make(map[int]bool, n)
	for i, f := range fields {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("pin %d: %w", i, err)
		}
		if p < 0 {
			return nil, fmt.Errorf("pin %d: negative", i)
		}
		if seen[p] {
			return nil, fmt.Errorf("pin %d used twice", p)
		}
		seen[p] = true
		pins[i] = p
	}
	return pins, nil
}

func joinPins(pins []int) string {
	s := make([]string, len(pins))
	for i, p := range pins {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, ",")
}
