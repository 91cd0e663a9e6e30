package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ledclock/internal/status"
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
	"hourFormat": status.HourFormat,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>LED Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.face { font-size: 2.4em; letter-spacing: 0.1em; }
.warn { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>LED Clock</h1>

<h2>Clock</h2>
{{if .Ready}}<table>
<tr><th>Time</th><td id="time" class="face">{{.Clock.Time}}</td></tr>
<tr><th>Date</th><td id="date">{{.Clock.Date}}</td></tr>
<tr><th>Mode</th><td id="mode">{{.Clock.Mode}}</td></tr>
<tr><th>Display</th><td>{{hourFormat .Clock.Hour24}}</td></tr>
<tr><th>RTC</th><td>{{if .Clock.PowerLossLamp}}<span class="warn">power lost, time not set</span>{{else}}ok{{end}}</td></tr>
</table>{{else}}<p>waiting for clock</p>{{end}}

<h2>Event Counts</h2>
<table>
<tr><th>Time saves</th><td>{{.Clock.Counts.TimeSaves}}</td></tr>
<tr><th>Date saves</th><td>{{.Clock.Counts.DateSaves}}</td></tr>
<tr><th>Chimes</th><td>{{.Clock.Counts.Chimes}}</td></tr>
<tr><th>Bus errors</th><td>{{.Clock.Counts.BusErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Config.Broker}}{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}}){{else}}disabled{{end}}</td></tr>
<tr><th>I2C bus</th><td>{{.Config.I2CBus}}</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.Heartbeat}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickUs}}&micro;s</td></tr>
<tr><th>Mux</th><td>{{.Config.MuxUs}}&micro;s</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
