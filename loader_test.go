package reviews

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, root string, parts []string, content string) {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, []string{"ISA", "2020", "trades.jsonl"},
		`{"kind":"buy","date":"2020-01-10","security":"VWRL.L","name":"Vanguard FTSE All-World","shares":100,"price":80,"amount":8000}
`)
	writeFile(t, root, []string{"ISA", "2021", "growth", "trades.jsonl"},
		`{"kind":"buy","date":"2021-03-10","security":"IUSA.L","shares":50,"price":30,"amount":1500}
`)
	// stray files are ignored
	writeFile(t, root, []string{"ISA", "2020", "README.md"}, "notes\n")
	writeFile(t, root, []string{"Downloads", "2020", "x.jsonl"}, "not a category\n")

	p, err := Load(root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("portfolio has %d ledgers, want 2", p.Len())
	}

	vwrl := p.Get(Key{Security: "VWRL.L", Category: ISA})
	if vwrl == nil || vwrl.Len() != 1 {
		t.Fatal("VWRL.L ledger missing or wrong size")
	}
	if vwrl.Name != "Vanguard FTSE All-World" {
		t.Errorf("Name = %q, want from the export", vwrl.Name)
	}
	if vwrl.Tag != "" {
		t.Errorf("Tag = %q, want untagged for files directly under the year", vwrl.Tag)
	}

	iusa := p.Get(Key{Security: "IUSA.L", Category: ISA})
	if iusa == nil {
		t.Fatal("IUSA.L ledger missing")
	}
	if iusa.Tag != "growth" {
		t.Errorf("Tag = %q, want the subdirectory name", iusa.Tag)
	}
}

func TestLoad_YAMLNotesPatchTheStream(t *testing.T) {
	root := t.TempDir()
	// the export lost the purchase; a hand-written note restores it
	writeFile(t, root, []string{"Taxable", "2020", "trades.jsonl"},
		`{"kind":"sell","date":"2020-06-10","security":"AAPL","shares":10,"price":120,"amount":1200}
`)
	writeFile(t, root, []string{"Taxable", "2020", "fixes.yaml"},
		"- kind: buy\n  ticker: AAPL\n  date: 2020-01-10\n  shares: 10\n  price: 100\n  amount: 1000\n")

	p, err := Load(root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	l := p.Get(Key{Security: "AAPL", Category: Taxable})
	if l == nil {
		t.Fatal("ledger missing, the note should have rescued it")
	}
	pos := Replay(l, l.Events(), day(2021, time.January, 1), ReplayOptions{})
	if pos.Held() {
		t.Errorf("position holds %v shares, want flat after buy and sell", pos.Shares)
	}
}

func TestLoad_ResolvesSymbols(t *testing.T) {
	root := t.TempDir()
	// a fund note with no ticker resolves through the security name, and a
	// bare exchange ticker gets its suffix from the ISIN country
	writeFile(t, root, []string{"ISA", "2021", "notes.yaml"},
		"- kind: buy\n  name: Rocket Lab USA Inc\n  date: 2021-03-10\n  shares: 100\n  price: 10\n  amount: 1000\n")
	writeFile(t, root, []string{"ISA", "2021", "trades.jsonl"},
		`{"kind":"buy","date":"2021-05-10","security":"VOD","isin":"GB00BH4HKS39","shares":200,"price":1.2,"amount":240}
`)

	p, err := Load(root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Get(Key{Security: "RKLB", Category: ISA}) == nil {
		t.Error("RKLB ledger missing, the name should have resolved the ticker")
	}
	if p.Get(Key{Security: "VOD.L", Category: ISA}) == nil {
		t.Error("VOD.L ledger missing, the ISIN should have added the London suffix")
	}
}

func TestLoad_Filters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, []string{"ISA", "2020", "trades.jsonl"},
		`{"kind":"buy","date":"2020-01-10","security":"VWRL.L","shares":100,"price":80,"amount":8000}
`)
	writeFile(t, root, []string{"Pension", "2020", "trades.jsonl"},
		`{"kind":"buy","date":"2020-02-10","security":"VWRL.L","shares":10,"price":80,"amount":800}
`)
	writeFile(t, root, []string{"ISA", "2021", "trades.jsonl"},
		`{"kind":"buy","date":"2021-01-10","security":"IUSA.L","shares":10,"price":30,"amount":300}
`)

	p, err := Load(root, LoadOptions{
		Filter: Filter{Categories: []Category{ISA}},
		Years:  []int{2020},
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("portfolio has %d ledgers, want only the 2020 ISA file", p.Len())
	}
	if p.Get(Key{Security: "VWRL.L", Category: ISA}) == nil {
		t.Error("2020 ISA ledger missing")
	}
}

func TestLoad_DetectsCrossAccountTransfers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, []string{"Taxable", "2019", "trades.jsonl"},
		`{"kind":"buy","date":"2019-05-01","security":"VWRL.L","shares":100,"price":80,"amount":8000}
`)
	writeFile(t, root, []string{"Taxable", "2021", "trades.jsonl"},
		`{"kind":"sell","date":"2021-04-06","security":"VWRL.L","shares":100,"price":95,"amount":9500}
`)
	writeFile(t, root, []string{"ISA", "2021", "trades.jsonl"},
		`{"kind":"buy","date":"2021-04-06","security":"VWRL.L","shares":100,"price":95,"amount":9500}
`)

	p, err := Load(root, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	isa := p.Get(Key{Security: "VWRL.L", Category: ISA})
	if isa == nil {
		t.Fatal("ISA ledger missing")
	}
	if _, ok := isa.Events()[0].(Transfer); !ok {
		t.Errorf("ISA leg is %T, want Transfer after detection", isa.Events()[0])
	}
}
