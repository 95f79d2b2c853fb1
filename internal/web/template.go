package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/reef-guardian/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Reef Guardian</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: red; font-weight: bold; }
.off { color: #888; }
.open { color: green; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Reef Guardian</h1>
<table>
<tr><th>Distress</th><td class="{{if .Distress}}on{{else}}off{{end}}">{{onOff .Distress}}</td></tr>
<tr><th>Dosing window</th><td class="{{if .WindowOpen}}open{{else}}off{{end}}">{{if .WindowOpen}}OPEN{{else}}CLOSED{{end}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
</table>
<table>
<tr><th>Sync success</th><td>{{.Counters.SyncSuccess}}</td></tr>
<tr><th>Sync miss</th><td>{{.Counters.SyncMiss}}</td></tr>
<tr><th>Alerts acked</th><td>{{.Counters.AlertsAcked}}</td></tr>
<tr><th>Last ack latency</th><td>{{.LastAckLatency}}</td></tr>
<tr><th>Trend average</th><td>{{printf "%.2f" .TrendAverage}} ({{.TrendSamples}} samples)</td></tr>
</table>
<table>
<tr><th>Dropped inbound</th><td>{{.Counters.InboundDropped}}</td></tr>
<tr><th>Dropped alerts</th><td>{{.Counters.AlertsDropped}}</td></tr>
<tr><th>Dropped edges</th><td>{{.Counters.EdgesDropped}}</td></tr>
<tr><th>Dropped samples</th><td>{{.Counters.SamplesDropped}}</td></tr>
</table>
<table>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Window tolerance</th><td>{{.Config.WindowToleranceMs}}ms</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
</table>
<p><a href="/index.json">json</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

type templateData struct {
	status.Snapshot
	Uptime time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	data := templateData{Snapshot: snap, Uptime: snap.Uptime()}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render error: %v", err)
	}
}
