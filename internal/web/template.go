package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gesture-sensor/internal/logic"
	"github.com/sweeney/gesture-sensor/internal/mqtt"
	"github.com/sweeney/gesture-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		switch {
		case days > 0:
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		case h > 0:
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		case m > 0:
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"pressed": func(p bool) string {
		if p {
			return "PRESSED"
		}
		return "RELEASED"
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

type gestureRow struct {
	Code  string
	Name  string
	Count int
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gesture Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.active { color: green; font-weight: bold; }
.idle { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Gesture Sensor{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Inputs</h2>
<table>
<tr><th>Left button</th><td class="{{if .Inputs.LeftPressed}}active{{else}}idle{{end}}">{{pressed .Inputs.LeftPressed}}</td></tr>
<tr><th>Right button</th><td class="{{if .Inputs.RightPressed}}active{{else}}idle{{end}}">{{pressed .Inputs.RightPressed}}</td></tr>
<tr><th>Slide switch</th><td class="{{if .Inputs.SwitchOn}}active{{else}}idle{{end}}">{{onOff .Inputs.SwitchOn}}</td></tr>
<tr><th>Orientation</th><td id="orientation">{{.Inputs.Orientation}}</td></tr>
<tr><th>Last gesture</th><td id="last-gesture">{{if .Last.Gesture}}{{.Last.Gesture}}{{else}}none yet{{end}}</td></tr>
<tr><th>Bus errors</th><td>{{.Inputs.BusErrors}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
{{if .MQTTBuffered}}<tr><th>Buffered</th><td id="mqtt-buffered">{{.MQTTBuffered}} messages</td></tr>{{end}}
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Gesture Counts</h2>
<table>
{{range .Rows}}<tr><th>{{.Name}}</th><td id="count-{{.Code}}">{{.Count}}</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Accelerometer</th><td>i2c bus {{.Config.I2CBus}} addr {{printf "%#02x" .Config.I2CAddr}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Topic}}";
  var dot = document.getElementById("live-dot");
  var lastEl = document.getElementById("last-gesture");
  var orientEl = document.getElementById("orientation");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });
  client.on("reconnect", function() { setDot("pending", "reconnecting"); });
  client.on("offline", function() { setDot("err", "offline"); });
  client.on("error", function() { setDot("err", "error"); });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (!msg.gesture) {
        return;
      }
      lastEl.textContent = msg.gesture.description;
      orientEl.textContent = msg.gesture.orientation.replace("_", " ");
      var cell = document.getElementById("count-" + msg.gesture.event);
      if (cell) {
        cell.textContent = String(parseInt(cell.textContent, 10) + 1);
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	rows := make([]gestureRow, 0, len(logic.Gestures()))
	for _, g := range logic.Gestures() {
		rows = append(rows, gestureRow{Code: g.Code(), Name: g.String(), Count: snap.Counts.Of(g)})
	}
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Rows   []gestureRow
		Topic  string
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Rows:     rows,
		Topic:    mqtt.Topic,
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render status page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
