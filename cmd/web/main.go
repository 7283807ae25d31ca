package main

import (
	_ "embed"
	"html/template"
	"net"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/tomz197/dropcatch/internal/config"
	"github.com/tomz197/dropcatch/internal/round"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"mul100": func(f float64) float64 { return f * 100 },
}).Parse(htmlPage))

// pageData is rendered into index.html.
type pageData struct {
	SSHHost      string
	SSHPort      string
	Difficulties []round.DifficultyConfig
}

func newPageData(table round.Table, sshHost, sshPort string) pageData {
	data := pageData{SSHHost: sshHost, SSHPort: sshPort}
	for _, name := range round.Names() {
		if cfg, err := table.Get(name); err == nil {
			data.Difficulties = append(data.Difficulties, cfg)
		}
	}
	return data
}

func handler(data pageData, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			logger.Error("failed to render page", "err", err)
		}
	}
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "web"})

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_PORT", "2222")

	table := round.DefaultTable()
	if path := config.GetEnv("DROPCATCH_DIFFICULTY_FILE", ""); path != "" {
		t, err := round.LoadTable(path)
		if err != nil {
			logger.Fatal("failed to load difficulty file", "path", path, "err", err)
		}
		table = t
	}

	http.HandleFunc("/", handler(newPageData(table, sshHost, sshPort), logger))

	addr := net.JoinHostPort(host, port)
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
