// Package netsnapshot parses and validates the network snapshot format: a
// point-in-time export of ledger metadata, accounts, and contract storage
// that seeds a debugging session with real on-chain state. Decoding follows
// the trace package's jsoniter convention; balances, which carry more
// precision than a machine uint64, are validated as u128 with math/big, and
// Account.Decimal renders them with shopspring/decimal.
package netsnapshot

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	jsoniter "github.com/json-iterator/go"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxAccountBalance is u128's upper bound: a snapshot's balance field is the
// account's raw on-chain stroop balance, which parses as u128, not a
// fractional amount.
var maxAccountBalance = func() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	return max.Sub(max, big.NewInt(1))
}()

// Ledger carries the snapshot's ledger-header metadata.
type Ledger struct {
	Sequence          uint32 `json:"sequence"`
	Timestamp         uint64 `json:"timestamp"`
	NetworkPassphrase string `json:"network_passphrase"`
}

// Account is one funded account in the snapshot.
type Account struct {
	Address  string            `json:"address"`
	Balance  string            `json:"balance"`
	Sequence uint64            `json:"sequence"`
	Flags    *uint32           `json:"flags,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Contract is one deployed contract's identity and storage snapshot.
type Contract struct {
	ContractID string                 `json:"contract_id"`
	WasmHash   string                 `json:"wasm_hash"`
	WasmRef    *string                `json:"wasm_ref,omitempty"`
	Storage    map[string]interface{} `json:"storage"`
}

// Snapshot is the complete decoded network snapshot.
type Snapshot struct {
	Ledger    Ledger     `json:"ledger"`
	Accounts  []Account  `json:"accounts"`
	Contracts []Contract `json:"contracts"`
}

// Parse decodes and validates a network snapshot document, returning the
// first validation failure encountered.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, dbgerr.File("<snapshot>", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every rule the network snapshot format requires: empty
// passphrase, zero ledger sequence, non-alphanumeric address, non-hex
// wasm_hash, duplicate account addresses, duplicate contract ids, and
// balances outside u128's domain are all rejected.
func (s *Snapshot) Validate() error {
	if s.Ledger.NetworkPassphrase == "" {
		return dbgerr.Storage("network snapshot: empty network_passphrase", nil)
	}
	if s.Ledger.Sequence == 0 {
		return dbgerr.Storage("network snapshot: ledger sequence must be nonzero", nil)
	}

	seenAccounts := make(map[string]struct{}, len(s.Accounts))
	for _, a := range s.Accounts {
		if a.Address == "" || !isAlphanumeric(a.Address) {
			return dbgerr.Storage(fmt.Sprintf("network snapshot: account address %q is not alphanumeric", a.Address), nil)
		}
		if _, dup := seenAccounts[a.Address]; dup {
			return dbgerr.Storage(fmt.Sprintf("network snapshot: duplicate account address %q", a.Address), nil)
		}
		seenAccounts[a.Address] = struct{}{}
		if err := validateBalance(a.Balance); err != nil {
			return dbgerr.Storage(fmt.Sprintf("network snapshot: account %q has invalid balance %q", a.Address, a.Balance), err)
		}
	}

	seenContracts := make(map[string]struct{}, len(s.Contracts))
	for _, c := range s.Contracts {
		if c.ContractID == "" {
			return dbgerr.Storage("network snapshot: contract_id must be non-empty", nil)
		}
		if _, dup := seenContracts[c.ContractID]; dup {
			return dbgerr.Storage(fmt.Sprintf("network snapshot: duplicate contract id %q", c.ContractID), nil)
		}
		seenContracts[c.ContractID] = struct{}{}
		if c.WasmHash == "" || !isHex(c.WasmHash) {
			return dbgerr.Storage(fmt.Sprintf("network snapshot: contract %q has non-hex wasm_hash %q", c.ContractID, c.WasmHash), nil)
		}
	}
	return nil
}

// Decimal parses the account's balance string into a decimal.Decimal,
// assuming Validate has already confirmed it is a valid u128 literal.
func (a Account) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(a.Balance)
}

// validateBalance confirms s is a non-negative base-10 integer literal that
// fits in u128, the domain the on-chain balance actually parses as. A
// decimal point, a negative value, or a magnitude above u128's range is
// rejected rather than silently truncated; a leading '+' is accepted.
func validateBalance(s string) error {
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("balance %q is not a base-10 integer literal", s)
	}
	if bi.Sign() < 0 {
		return fmt.Errorf("balance %q is negative", s)
	}
	if bi.Cmp(maxAccountBalance) > 0 {
		return fmt.Errorf("balance %q exceeds u128 range", s)
	}
	return nil
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil && len(s)%2 == 0
}
