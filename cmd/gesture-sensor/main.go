// Command gesture-sensor decodes button, slide switch and accelerometer input
// into gestures and publishes them to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/gesture-sensor/internal/accel"
	"github.com/sweeney/gesture-sensor/internal/gpio"
	"github.com/sweeney/gesture-sensor/internal/logic"
	"github.com/sweeney/gesture-sensor/internal/mqtt"
	"github.com/sweeney/gesture-sensor/internal/status"
	"github.com/sweeney/gesture-sensor/internal/web"
)

type config struct {
	poll       time.Duration
	broker     string
	heartbeat  time.Duration
	chip       string
	pins       gpio.Pins
	i2cBus     string
	i2cAddr    uint16
	printState bool
	httpAddr   string
	wsBroker   string
}

func main() {
	var cfg config
	var addr uint
	configPath := flag.String("config", "", "YAML config file (command line flags take precedence)")
	flag.DurationVar(&cfg.poll, "poll", 10*time.Millisecond, "Gesture polling interval")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.chip, "chip", "gpiochip0", "GPIO chip name")
	flag.IntVar(&cfg.pins.Left, "pin-left", gpio.DefaultPins.Left, "BCM pin number for the left button")
	flag.IntVar(&cfg.pins.Right, "pin-right", gpio.DefaultPins.Right, "BCM pin number for the right button")
	flag.IntVar(&cfg.pins.Switch, "pin-switch", gpio.DefaultPins.Switch, "BCM pin number for the slide switch")
	flag.IntVar(&cfg.pins.Interrupt, "pin-int", gpio.DefaultPins.Interrupt, "BCM pin number for the accelerometer INT1 line")
	flag.StringVar(&cfg.i2cBus, "i2c-bus", "", "I2C bus name or number (empty for the first bus)")
	flag.UintVar(&addr, "i2c-addr", accel.DefaultAddr, "I2C address of the accelerometer")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current input state and exit")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	if addr > 0x7F {
		log.Fatalf("fatal: i2c address %#x out of range", addr)
	}
	cfg.i2cAddr = uint16(addr)

	if *configPath != "" {
		fc, err := loadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		fc.apply(&cfg, explicitFlags(flag.CommandLine))
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
	cfg.wsBroker = resolveWSBroker(cfg.wsBroker, cfg.broker)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	sensor, err := accel.Open(cfg.i2cBus, cfg.i2cAddr)
	if err != nil {
		return fmt.Errorf("init accelerometer: %w", err)
	}
	defer sensor.Close()

	if err := sensor.Configure(); err != nil {
		return fmt.Errorf("configure accelerometer: %w", err)
	}

	arb := logic.NewArbiter(sensor, logic.DefaultPolarity)

	watcher, err := gpio.NewRealWatcher(cfg.chip, cfg.pins, gpio.Handlers{
		Left:      arb.Left.Set,
		Right:     arb.Right.Set,
		Switch:    arb.Slide.Set,
		Interrupt: arb.AccelInterrupt,
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	if cfg.printState {
		return printState(watcher, sensor)
	}

	publisher, err := mqtt.NewRealPublisher(cfg.broker, "gesture-sensor")
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker exists before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		WSBroker:    cfg.wsBroker,
		I2CBus:      cfg.i2cBus,
		I2CAddr:     cfg.i2cAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	if err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
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

	log.Printf("started: poll=%v broker=%s heartbeat=%v chip=%s pins=%+v i2c=%q/%#02x",
		cfg.poll, cfg.broker, cfg.heartbeat, cfg.chip, cfg.pins, cfg.i2cBus, cfg.i2cAddr)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(arb, publisher, publisher, tracker, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

func printState(w gpio.Watcher, s logic.Sensor) error {
	left, right, slide, err := w.Levels()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	motion, err := s.MotionSource()
	if err != nil {
		return fmt.Errorf("read accelerometer: %w", err)
	}
	x, y, z, err := s.Acceleration()
	if err != nil {
		return fmt.Errorf("read accelerometer: %w", err)
	}
	fmt.Printf("left: %s, right: %s, switch: %s, orientation: %s, accel: %.2f %.2f %.2f m/s^2\n",
		levelString(left), levelString(right), levelString(slide), logic.OrientationFor(motion), x, y, z)
	return nil
}

func runLoop(arb *logic.Arbiter, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	tally := logic.NewTally(startTime)
	var busErrors uint64

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(status.Inputs{
			LeftPressed:  arb.LeftPressed(),
			RightPressed: arb.RightPressed(),
			SwitchOn:     arb.SwitchOn(),
			Orientation:  arb.Orientation(),
			BusErrors:    arb.BusErrors(),
		}, tally.Last(), tally.Counts())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
			tracker.SetMQTTBuffered(mqttStatus.Buffered())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			switch s {
			case syscall.SIGINT:
				signalName = "SIGINT"
			case syscall.SIGTERM:
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ticks := logic.Ticks(t.Sub(startTime).Milliseconds())

			if g := arb.Update(ticks); g != logic.None {
				event := logic.Event{
					Timestamp:   t,
					Ticks:       ticks,
					Gesture:     g,
					Orientation: arb.Orientation(),
				}
				tally.Record(event)
				log.Printf("gesture: %s (orientation=%s)", g, event.Orientation)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
				}
			}

			if n := arb.BusErrors(); n != busErrors {
				log.Printf("accel: %d read errors since startup", n)
				busErrors = n
			}

			if hb := tally.CheckHeartbeat(t, heartbeat); hb != nil {
				if mqttStatus != nil {
					log.Printf("heartbeat: uptime=%v gestures=%d mqtt_buffered=%d", hb.Uptime, hb.Counts.Total(), mqttStatus.Buffered())
				} else {
					log.Printf("heartbeat: uptime=%v gestures=%d", hb.Uptime, hb.Counts.Total())
				}

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					refresh()
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			refresh()
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
