package marketdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"time"

	"github.com/PaesslerAG/jsonpath"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	reviews "github.com/cloudon7281/investment-reviews"
	"github.com/cloudon7281/investment-reviews/date"
)

const (
	chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=div,splits&crumb=%s"
	quoteURL = "https://finance.yahoo.com/quote/VHYL.L"

	// preBufferDays widens the request window backwards so the first
	// requested day always has a close to fill forward from, even over a
	// holiday stretch. postBufferDays covers timezone skew at the far end.
	preBufferDays  = 21
	postBufferDays = 1
)

var crumbRe = regexp.MustCompile(`"CrumbStore":{"crumb":"(.*?)"}`)

// errUnknownSymbol marks responses where the provider answered but holds
// nothing for the symbol. The ticker itself is wrong, so neither a retry
// nor the stored closes can help.
var errUnknownSymbol = errors.New("symbol unknown to the provider")

// Service fetches close prices from the quote provider and serves them as
// a reviews.PriceSource, normalized to the reporting currency.
type Service struct {
	client  *http.Client
	limiter *rate.Limiter
	memo    *gocache.Cache
	store   *Store
	crumb   string

	// fetchFn stands in for fetch in tests
	fetchFn func(ctx context.Context, symbol string, from, to date.Date, live bool) (*rawSeries, error)

	reporting string
}

// Options configures a Service. The zero value works: responses cache in
// the system temp dir and nothing persists across days.
type Options struct {
	// CacheDir holds the daily HTTP response cache.
	CacheDir string
	// StorePath, when set, names a sqlite database persisting normalized
	// closes, used as a fallback when the provider is unreachable.
	StorePath string
}

// NewService builds a price service reporting in GBP.
func NewService(opts Options) (*Service, error) {
	client, err := newClient(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	s := &Service{
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		memo:      gocache.New(30*time.Minute, time.Hour),
		reporting: "GBP",
	}
	s.fetchFn = s.fetch
	if opts.StorePath != "" {
		store, err := OpenStore(opts.StorePath)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s, nil
}

// Close releases the underlying close store, if any.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// init establishes the provider session: a GET on a quote page sets the
// cookies, and the page body carries the crumb the chart API wants echoed
// back. Called lazily and again whenever the crumb stops working.
func (s *Service) init(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, quoteURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("establishing provider session: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if m := crumbRe.FindSubmatch(body); m != nil {
		s.crumb = string(m[1])
	}
	if s.crumb == "" {
		slog.Debug("no crumb in quote page, continuing without")
	}
	return nil
}

// Prices implements reviews.PriceSource.
func (s *Service) Prices(ctx context.Context, symbols []string, from, to date.Date, live bool) (*reviews.Quotes, error) {
	symbols = slices.Compact(slices.Sorted(slices.Values(symbols)))
	from, to = from.Add(-preBufferDays), to.Add(postBufferDays)

	if s.crumb == "" {
		if err := s.init(ctx); err != nil {
			slog.Warn("provider session bootstrap failed", "err", err)
		}
	}

	series := make([]*rawSeries, 0, len(symbols))
	currencies := make(map[string]bool)
	for _, symbol := range symbols {
		raw, err := s.fetchFn(ctx, symbol, from, to, live)
		if err != nil {
			if errors.Is(err, errUnknownSymbol) {
				return nil, fmt.Errorf("fetching %s: %w", symbol, err)
			}
			if s.store != nil {
				slog.Warn("fetch failed, falling back to stored closes", "symbol", symbol, "err", err)
				if raw, err = s.store.Load(symbol, from, to); err == nil && len(raw.Days) > 0 {
					series = append(series, raw)
					continue
				}
			}
			// an unreachable provider should not sink the whole run, the
			// symbol just reports without closes
			slog.Warn("no closes fetched", "symbol", symbol, "err", err)
			continue
		}
		raw.dropSpikes()
		raw.normalizeUnits()
		if raw.Currency != s.reporting && raw.Currency != "" && raw.Currency != "GBp" {
			currencies[raw.Currency] = true
		}
		series = append(series, raw)
	}

	fx := newFxRates(s.reporting)
	fx.live = live
	for currency := range currencies {
		if err := s.fetchRates(ctx, fx, currency, from, to); err != nil {
			slog.Warn("no exchange rates fetched", "currency", currency, "err", err)
		}
	}

	quotes := reviews.NewQuotes()
	for _, raw := range series {
		if raw.Currency == "GBp" {
			// already scaled to pounds by normalizeUnits
			raw.Currency = s.reporting
		}
		fx.convert(raw)
		if s.store != nil {
			if err := s.store.Save(raw); err != nil {
				slog.Warn("cannot persist closes", "symbol", raw.Symbol, "err", err)
			}
		}
		for i := range raw.Closes {
			if raw.valid(i) {
				quotes.Append(raw.Symbol, raw.Days[i], reviews.GBP(raw.Closes[i]))
			}
		}
	}
	return quotes, nil
}

// fetch returns the raw daily closes for one symbol, memoized for the run.
func (s *Service) fetch(ctx context.Context, symbol string, from, to date.Date, live bool) (*rawSeries, error) {
	key := fmt.Sprintf("%s %s %s %v", symbol, from, to, live)
	if cached, ok := s.memo.Get(key); ok {
		return cached.(*rawSeries), nil
	}
	raw, err := s.fetchChart(ctx, symbol, from, to, live)
	if err != nil {
		return nil, err
	}
	s.memo.Set(key, raw, gocache.DefaultExpiration)
	return raw, nil
}

func (s *Service) fetchChart(ctx context.Context, symbol string, from, to date.Date, live bool) (*rawSeries, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	addr := fmt.Sprintf(chartURL, url.PathEscape(symbol), from.Unix(), to.Unix(), url.QueryEscape(s.crumb))
	data, err := getJSON(s.client, addr)
	if err != nil {
		// the crumb expires with the session cookies, one refresh is
		// worth trying before giving up
		if ierr := s.init(ctx); ierr != nil {
			return nil, err
		}
		addr = fmt.Sprintf(chartURL, url.PathEscape(symbol), from.Unix(), to.Unix(), url.QueryEscape(s.crumb))
		if data, err = getJSON(s.client, addr); err != nil {
			return nil, err
		}
	}

	raw := &rawSeries{Symbol: symbol}
	if cur, err := jsonpath.Get("$.chart.result[0].meta.currency", data); err == nil {
		raw.Currency, _ = cur.(string)
	}
	timestamps, terr := jsonpath.Get("$.chart.result[0].timestamp", data)
	closes, cerr := jsonpath.Get("$.chart.result[0].indicators.quote[0].close", data)
	if terr == nil && cerr == nil {
		ts, _ := timestamps.([]any)
		cs, _ := closes.([]any)
		for i := range min(len(ts), len(cs)) {
			sec, ok := ts[i].(float64)
			if !ok {
				continue
			}
			raw.Days = append(raw.Days, date.FromTime(time.Unix(int64(sec), 0).UTC()))
			if v, ok := cs[i].(float64); ok {
				raw.Closes = append(raw.Closes, v)
			} else {
				raw.Closes = append(raw.Closes, math.NaN())
			}
		}
	}

	allNaN := true
	for i := range raw.Closes {
		if raw.valid(i) {
			allNaN = false
			break
		}
	}
	if len(raw.Days) == 0 || allNaN {
		// suspended or too new for history, the live quote is all there is
		price, err := jsonpath.Get("$.chart.result[0].meta.regularMarketPrice", data)
		if err != nil {
			return nil, fmt.Errorf("%s: no closes and no market price: %w", symbol, errUnknownSymbol)
		}
		v, ok := price.(float64)
		if !ok {
			return nil, fmt.Errorf("%s: no closes and no market price: %w", symbol, errUnknownSymbol)
		}
		slog.Warn("no close history, using live price", "symbol", symbol, "price", v)
		raw.Days = []date.Date{date.Today()}
		raw.Closes = []float64{v}
		return raw, nil
	}

	if live {
		if price, err := jsonpath.Get("$.chart.result[0].meta.regularMarketPrice", data); err == nil {
			if v, ok := price.(float64); ok {
				today := date.Today()
				if last := raw.Days[len(raw.Days)-1]; last.Before(today) {
					raw.Days = append(raw.Days, today)
					raw.Closes = append(raw.Closes, v)
				} else {
					raw.Closes[len(raw.Closes)-1] = v
				}
			}
		}
	}
	return raw, nil
}

// fetchRates loads daily conversion rates from currency into the reporting
// currency, trying the direct pair first and falling back to a two-leg
// conversion through USD.
func (s *Service) fetchRates(ctx context.Context, fx *fxRates, currency string, from, to date.Date) error {
	direct, err := s.fetchFn(ctx, fmt.Sprintf("%s%s=X", currency, s.reporting), from, to, fx.live)
	if err == nil {
		for i := range direct.Closes {
			if direct.valid(i) {
				fx.add(currency, direct.Days[i], direct.Closes[i])
			}
		}
		return nil
	}

	toUSD, err1 := s.fetchFn(ctx, fmt.Sprintf("%sUSD=X", currency), from, to, fx.live)
	usdToRep, err2 := s.fetchFn(ctx, fmt.Sprintf("USD%s=X", s.reporting), from, to, fx.live)
	if err1 != nil || err2 != nil {
		return fmt.Errorf("no %s rates, direct: %v", currency, err)
	}
	// align the two legs by forward filling the USD leg onto the
	// currency leg's dates
	leg := &date.History[float64]{}
	for i := range usdToRep.Closes {
		if usdToRep.valid(i) {
			leg.Append(usdToRep.Days[i], usdToRep.Closes[i])
		}
	}
	for i := range toUSD.Closes {
		if !toUSD.valid(i) {
			continue
		}
		r, ok := leg.ValueAsOf(toUSD.Days[i])
		if !ok {
			_, r = leg.First()
		}
		fx.add(currency, toUSD.Days[i], toUSD.Closes[i]*r)
	}
	return nil
}
