package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/tracker"
)

// Format represents the export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Options configures the export behavior
type Options struct {
	Format    Format
	Coin      amount.Coin
	StartTime time.Time
	EndTime   time.Time
	EventType string // e.g. user_sell
	Status    string // success, failed or pending
	Token     string // target token address
	OutputDir string
}

// LogExporter writes copy-trading logs to disk
type LogExporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogExporter creates a new log exporter
func NewLogExporter(logger *zap.Logger) *LogExporter {
	return &LogExporter{
		logger: logger.Named("export"),
		now:    time.Now,
	}
}

// Export filters logs, sorts them oldest first, and writes them to a new
// file under opts.OutputDir. It returns the file path.
func (e *LogExporter) Export(logs []api.CopyTradingLog, opts Options) (string, error) {
	filtered := Filter(logs, opts)
	if len(filtered) == 0 {
		return "", fmt.Errorf("no logs match the export criteria")
	}
	sortByTime(filtered)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(opts.OutputDir, e.filename(opts))

	var err error
	switch opts.Format {
	case FormatCSV:
		err = e.writeCSV(filtered, opts.Coin, outputPath)
	case FormatJSON:
		err = e.writeJSON(filtered, opts.Coin, outputPath)
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("Logs exported",
		zap.String("file", outputPath),
		zap.Int("count", len(filtered)),
		zap.String("format", string(opts.Format)))

	return outputPath, nil
}

// Filter applies the option filters. Logs with an unparseable timestamp are
// dropped only when a time range is set.
func Filter(logs []api.CopyTradingLog, opts Options) []api.CopyTradingLog {
	var filtered []api.CopyTradingLog
	timed := !opts.StartTime.IsZero() || !opts.EndTime.IsZero()

	for _, log := range logs {
		if timed {
			ts, ok := Timestamp(log)
			if !ok {
				continue
			}
			if !opts.StartTime.IsZero() && ts.Before(opts.StartTime) {
				continue
			}
			if !opts.EndTime.IsZero() && !ts.Before(opts.EndTime) {
				continue
			}
		}
		if opts.EventType != "" && log.EventType != opts.EventType {
			continue
		}
		if opts.Status != "" && tracker.Status(log) != opts.Status {
			continue
		}
		if opts.Token != "" && tracker.Token(log) != opts.Token {
			continue
		}
		filtered = append(filtered, log)
	}

	return filtered
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// Timestamp parses created_at. The backend sends naive UTC timestamps, so a
// value without a zone is read as UTC.
func Timestamp(log api.CopyTradingLog) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, log.CreatedAt); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

func sortByTime(logs []api.CopyTradingLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		ti, _ := Timestamp(logs[i])
		tj, _ := Timestamp(logs[j])
		return ti.Before(tj)
	})
}

func (e *LogExporter) filename(opts Options) string {
	timestamp := e.now().Format("20060102_150405")

	prefix := "logs_all"
	if opts.EventType != "" {
		prefix = "logs_" + opts.EventType
	}
	if opts.Coin != "" {
		prefix += "_" + string(opts.Coin)
	}
	if opts.Token != "" {
		token := opts.Token
		if len(token) > 8 {
			token = token[:8]
		}
		prefix += "_" + token
	}

	return fmt.Sprintf("%s_%s.%s", prefix, timestamp, opts.Format)
}

// Headers are the CSV column names
func Headers() []string {
	return []string{
		"id", "created_at", "event_type", "status", "wallet_address", "token",
		"token_name", "sent", "received", "fee", "pnl", "transaction_signature", "error",
	}
}

// Row renders one log as CSV fields, amounts already formatted for coin
func Row(log api.CopyTradingLog, coin amount.Coin) []string {
	pnl := ""
	if log.PnL != nil {
		pnl = strconv.FormatFloat(*log.PnL, 'f', -1, 64)
	}
	return []string{
		strconv.Itoa(log.ID),
		log.CreatedAt,
		log.EventType,
		tracker.Status(log),
		tracker.Wallet(log),
		tracker.Token(log),
		valueOf(log.TokenName),
		tracker.Sent(log, coin),
		tracker.Received(log, coin),
		tracker.Fee(log, coin),
		pnl,
		valueOf(log.TransactionSignature),
		valueOf(log.ErrorMessage),
	}
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (e *LogExporter) writeCSV(logs []api.CopyTradingLog, coin amount.Coin, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, log := range logs {
		if err := writer.Write(Row(log, coin)); err != nil {
			return fmt.Errorf("failed to write log %d: %w", log.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Entry is a log as written to JSON: the raw record plus display amounts
type Entry struct {
	api.CopyTradingLog
	Label    string `json:"label"`
	Sent     string `json:"sent"`
	Received string `json:"received"`
	Fee      string `json:"fee"`
}

func entries(logs []api.CopyTradingLog, coin amount.Coin) []Entry {
	out := make([]Entry, len(logs))
	for i, log := range logs {
		out[i] = Entry{
			CopyTradingLog: log,
			Label:          tracker.EventLabel(log.EventType),
			Sent:           tracker.Sent(log, coin),
			Received:       tracker.Received(log, coin),
			Fee:            tracker.Fee(log, coin),
		}
	}
	return out
}

func (e *LogExporter) writeJSON(logs []api.CopyTradingLog, coin amount.Coin, outputPath string) error {
	exportData := struct {
		ExportTime time.Time `json:"export_time"`
		Coin       string    `json:"coin"`
		LogCount   int       `json:"log_count"`
		Logs       []Entry   `json:"logs"`
		Summary    Summary   `json:"summary"`
	}{
		ExportTime: e.now(),
		Coin:       string(coin),
		LogCount:   len(logs),
		Logs:       entries(logs, coin),
		Summary:    Summarize(logs),
	}
	return writeJSONFile(outputPath, exportData)
}

func writeJSONFile(outputPath string, v interface{}) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summary contains statistics over a set of logs
type Summary struct {
	TotalEvents   int            `json:"total_events"`
	Successful    int            `json:"successful"`
	Failed        int            `json:"failed"`
	Pending       int            `json:"pending"`
	BuyCount      int            `json:"buy_count"`
	SellCount     int            `json:"sell_count"`
	ByEventType   map[string]int `json:"by_event_type"`
	UniqueTokens  int            `json:"unique_tokens"`
	UniqueWallets int            `json:"unique_wallets"`
	TotalPnL      float64        `json:"total_pnl"`
	WinCount      int            `json:"win_count"`
	LossCount     int            `json:"loss_count"`
	WinRate       float64        `json:"win_rate"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
}

// Summarize computes statistics for logs sorted oldest first
func Summarize(logs []api.CopyTradingLog) Summary {
	summary := Summary{
		TotalEvents: len(logs),
		ByEventType: make(map[string]int),
	}
	if len(logs) == 0 {
		return summary
	}

	summary.StartDate, _ = Timestamp(logs[0])
	summary.EndDate, _ = Timestamp(logs[len(logs)-1])

	tokens := make(map[string]struct{})
	wallets := make(map[string]struct{})
	var closed int

	for _, log := range logs {
		summary.ByEventType[log.EventType]++
		if t := tracker.Token(log); t != "" {
			tokens[t] = struct{}{}
		}
		if w := tracker.Wallet(log); w != "" {
			wallets[w] = struct{}{}
		}

		switch tracker.Status(log) {
		case tracker.StatusSuccess:
			summary.Successful++
		case tracker.StatusFailed:
			summary.Failed++
		default:
			summary.Pending++
		}

		if tracker.IsBuy(log) {
			summary.BuyCount++
		} else if log.EventType == tracker.EventUserSell {
			summary.SellCount++
		}

		if log.PnL != nil {
			closed++
			summary.TotalPnL += *log.PnL
			if *log.PnL > 0 {
				summary.WinCount++
			} else if *log.PnL < 0 {
				summary.LossCount++
			}
		}
	}

	summary.UniqueTokens = len(tokens)
	summary.UniqueWallets = len(wallets)
	if closed > 0 {
		summary.WinRate = float64(summary.WinCount) / float64(closed) * 100
	}

	return summary
}

// DailyReport is a one-day summary with an hourly breakdown
type DailyReport struct {
	Date            time.Time     `json:"date"`
	Coin            string        `json:"coin"`
	LogCount        int           `json:"log_count"`
	Summary         Summary       `json:"summary"`
	HourlyBreakdown []HourlyStats `json:"hourly_breakdown"`
	Logs            []Entry       `json:"logs"`
}

// HourlyStats counts events within one UTC hour
type HourlyStats struct {
	Hour       int     `json:"hour"`
	EventCount int     `json:"event_count"`
	BuyCount   int     `json:"buy_count"`
	SellCount  int     `json:"sell_count"`
	Failed     int     `json:"failed"`
	PnL        float64 `json:"pnl"`
}

// ExportDailyReport writes the report for the UTC day containing date.
// It returns "" without error when the day has no logs.
func (e *LogExporter) ExportDailyReport(logs []api.CopyTradingLog, coin amount.Coin, date time.Time, outputDir string) (string, error) {
	date = date.UTC()
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	filtered := Filter(logs, Options{StartTime: startOfDay, EndTime: startOfDay.Add(24 * time.Hour)})
	if len(filtered) == 0 {
		e.logger.Info("No logs for daily report", zap.Time("date", startOfDay))
		return "", nil
	}
	sortByTime(filtered)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	report := DailyReport{
		Date:            startOfDay,
		Coin:            string(coin),
		LogCount:        len(filtered),
		Summary:         Summarize(filtered),
		HourlyBreakdown: hourlyBreakdown(filtered),
		Logs:            entries(filtered, coin),
	}

	filename := fmt.Sprintf("daily_report_%s_%s.json", coin, startOfDay.Format("20060102"))
	outputPath := filepath.Join(outputDir, filename)
	if err := writeJSONFile(outputPath, report); err != nil {
		return "", err
	}

	e.logger.Info("Daily report exported",
		zap.String("file", outputPath),
		zap.Time("date", startOfDay),
		zap.Int("logs", len(filtered)))

	return outputPath, nil
}

func hourlyBreakdown(logs []api.CopyTradingLog) []HourlyStats {
	hourly := make(map[int]*HourlyStats)

	for _, log := range logs {
		ts, _ := Timestamp(log)
		hour := ts.Hour()

		stats, ok := hourly[hour]
		if !ok {
			stats = &HourlyStats{Hour: hour}
			hourly[hour] = stats
		}

		stats.EventCount++
		if tracker.IsBuy(log) {
			stats.BuyCount++
		} else if log.EventType == tracker.EventUserSell {
			stats.SellCount++
		}
		if tracker.Status(log) == tracker.StatusFailed {
			stats.Failed++
		}
		if log.PnL != nil {
			stats.PnL += *log.PnL
		}
	}

	var breakdown []HourlyStats
	for hour := 0; hour < 24; hour++ {
		if stats, ok := hourly[hour]; ok {
			breakdown = append(breakdown, *stats)
		}
	}
	return breakdown
}
