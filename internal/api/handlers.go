package api

import (
	"net/http"
	"time"
)

const (
	ServiceName = "nexocrypto-backend"
	Version     = "1.0.0"
)

type Handlers struct {
	now func() time.Time
}

func NewHandlers(now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{now: now}
}

func (h *Handlers) timestamp() string {
	return h.now().Format(time.RFC3339)
}

func (h *Handlers) Home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "NexoCrypto Backend API",
		"version":   Version,
		"status":    "online",
		"timestamp": h.timestamp(),
	})
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": h.timestamp(),
		"uptime":    "active",
	})
}

type Signal struct {
	ID           int       `json:"id"`
	Pair         string    `json:"pair"`
	Direction    string    `json:"direction"`
	Entry        float64   `json:"entry"`
	CurrentPrice float64   `json:"currentPrice"`
	Targets      []float64 `json:"targets"`
	StopLoss     float64   `json:"stopLoss"`
	Confidence   int       `json:"confidence"`
	Timeframe    string    `json:"timeframe"`
	Status       string    `json:"status"`
	Created      string    `json:"created"`
	Analysis     string    `json:"analysis"`
}

type Gem struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Rating      int    `json:"rating"`
	Potential   string `json:"potential"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type News struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Impact      float64 `json:"impact"`
	Sentiment   string  `json:"sentiment"`
	Timestamp   string  `json:"timestamp"`
	Description string  `json:"description"`
}

var signals = []Signal{
	{
		ID: 1, Pair: "BTCUSDT", Direction: "LONG",
		Entry: 115000, CurrentPrice: 115045,
		Targets: []float64{118500, 122000, 128000}, StopLoss: 110500,
		Confidence: 89, Timeframe: "1D", Status: "active",
		Created:  "07/08/2025 - 22:30",
		Analysis: "BTC testando resistência em $115K com volume institucional forte.",
	},
	{
		ID: 2, Pair: "ETHUSDT", Direction: "LONG",
		Entry: 3675, CurrentPrice: 3674,
		Targets: []float64{3850, 4100, 4400}, StopLoss: 3450,
		Confidence: 82, Timeframe: "4H", Status: "active",
		Created:  "07/08/2025 - 22:15",
		Analysis: "ETH rompeu $3700 com força. Empresas públicas acumulando ETH.",
	},
}

var gems = []Gem{
	{ID: 1, Name: "Bitcoin Hyper", Symbol: "BTHYP", Rating: 5, Potential: "1000%+", Category: "Layer-2", Description: "Layer-2 em presale com backing institucional"},
	{ID: 2, Name: "Biconomy", Symbol: "BICO", Rating: 4, Potential: "500%+", Category: "Web3", Description: "Web3 com backing Coinbase - Target $5+"},
}

var news = []News{
	{ID: 1, Title: "SEC aprova resgates in-kind para ETFs", Impact: 8.5, Sentiment: "BULLISH", Timestamp: "07/08/2025 - 22:45", Description: "Decisão histórica facilita operações institucionais"},
	{ID: 2, Title: "Empresas públicas acumulam ETH", Impact: 7.8, Sentiment: "BULLISH", Timestamp: "07/08/2025 - 22:30", Description: "Movimento massivo de adoção corporativa"},
}

func (h *Handlers) Signals(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, signals)
}

func (h *Handlers) Gems(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, gems)
}

func (h *Handlers) News(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, news)
}
