package component

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
	"github.com/rovshanmuradov/prometheus-client/internal/logger"
)

func TestFormCheckboxAndSelect(t *testing.T) {
	f := NewForm().
		AddField("strategy", FieldTypeSelect, "Swap Strategy", false, "").
		AddField("dip", FieldTypeCheckbox, "Buy the dip", false, "")
	f.SetFieldOptions("strategy", []string{"none", "fixed_buys"})

	f.SetFieldValue("strategy", "fixed_buys")
	assert.Equal(t, "fixed_buys", f.GetValue("strategy"))
	f.SetFieldValue("strategy", "bogus")
	assert.Equal(t, "fixed_buys", f.GetValue("strategy"), "unknown options are ignored")

	f.SetChecked("dip", true)
	assert.True(t, f.Checked("dip"))

	f.Update(keyMsg("tab"))
	assert.Equal(t, "dip", f.FocusedField())
	f.Update(keyMsg(" "))
	assert.False(t, f.Checked("dip"))
}

func TestFormValidate(t *testing.T) {
	f := NewForm().AddField("amount", FieldTypeNumber, "Amount", true, "")
	assert.False(t, f.Validate())
	assert.Contains(t, f.View(), "This field is required")

	typeInto := func(s string) {
		for _, r := range s {
			f.Update(keyMsg(string(r)))
		}
	}
	typeInto("0.5")
	assert.Equal(t, "0.5", f.GetValue("amount"))
	assert.True(t, f.Validate())
}

func TestTableSelectionClamps(t *testing.T) {
	tbl := NewTable().AddColumn("Wallet", 12, lipgloss.Left)
	tbl.SetRows([]TableRow{{Data: []string{"a"}}, {Data: []string{"b"}}})
	tbl.MoveDown().MoveDown()
	assert.Equal(t, 1, tbl.SelectedRow())

	tbl.SetRows([]TableRow{{Data: []string{"c"}}})
	assert.Equal(t, 0, tbl.SelectedRow())

	tbl.SetRows(nil)
	assert.Equal(t, -1, tbl.SelectedRow())
	assert.Contains(t, tbl.SetEmptyText("No wallets tracked").View(), "No wallets tracked")
}

func TestTableTruncatesRunes(t *testing.T) {
	assert.NotPanics(t, func() {
		renderCell("ééééééééééé", 5, lipgloss.Left, lipgloss.NewStyle())
	})
}

func TestStatusHeader(t *testing.T) {
	sh := NewStatusHeader()
	sh.SetUser("alice")
	sh.SetCoin(amount.CoinBNB)
	sh.SetBalance("1.5")

	view := sh.View()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "BNB")
}

func TestCompactLogViewer(t *testing.T) {
	buf := logger.NewRecentBuffer(10)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeTime:  zapcore.ISO8601TimeEncoder,
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}), zapcore.AddSync(buf), zapcore.DebugLevel)
	log := zap.New(core)
	log.Info("wallet tracked")
	log.Debug("noisy detail")

	clv := NewCompactLogViewer(buf)
	clv.SetSize(80, 10)
	view := clv.View()
	assert.Contains(t, view, "wallet tracked")
	assert.NotContains(t, view, "noisy detail")

	clv.SetShowDebug(true)
	assert.Contains(t, clv.View(), "noisy detail")
}
