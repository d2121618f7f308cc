// Package reviews reconstructs an investment portfolio from per-security
// event streams and produces valuation and performance reports.
//
// Events (buys, sells, stock conversions and bed-and-ISA transfers) are
// loaded from JSONL files and hand-written YAML notes organised by account
// category (ISA, Taxable, Pension). The builder resolves ticker identity
// changes, detects bed-and-ISA transfers and produces one Ledger per
// (security, category) pair. Reports replay the ledgers, value holdings with
// split-adjusted GBP prices and compute money-weighted returns.
package reviews
