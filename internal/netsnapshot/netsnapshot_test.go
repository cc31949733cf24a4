package netsnapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validDoc() string {
	return `{
		"ledger": {"sequence": 42, "timestamp": 1000, "network_passphrase": "Test SDF Network ; September 2015"},
		"accounts": [
			{"address": "GABC123", "balance": "1005000000", "sequence": 7}
		],
		"contracts": [
			{"contract_id": "CCONTRACT1", "wasm_hash": "deadbeef", "storage": {"Counter": 0}}
		]
	}`
}

func TestParseValidSnapshot(t *testing.T) {
	s, err := Parse([]byte(validDoc()))
	require.NoError(t, err)
	require.Equal(t, uint32(42), s.Ledger.Sequence)
	require.Len(t, s.Accounts, 1)
	require.Len(t, s.Contracts, 1)

	d, err := s.Accounts[0].Decimal()
	require.NoError(t, err)
	require.True(t, d.IsPositive())
}

func TestParseRejectsEmptyPassphrase(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": ""}, "accounts": [], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsZeroSequence(t *testing.T) {
	doc := `{"ledger": {"sequence": 0, "timestamp": 0, "network_passphrase": "x"}, "accounts": [], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsNonAlphanumericAddress(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [{"address": "G-ABC", "balance": "1", "sequence": 1}], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsNonHexWasmHash(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [], "contracts": [{"contract_id": "C1", "wasm_hash": "zzzz", "storage": {}}]}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsDuplicateAccountAddress(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [
			{"address": "GABC", "balance": "1", "sequence": 1},
			{"address": "GABC", "balance": "2", "sequence": 2}
		], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsDuplicateContractID(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [],
		"contracts": [
			{"contract_id": "C1", "wasm_hash": "ab", "storage": {}},
			{"contract_id": "C1", "wasm_hash": "cd", "storage": {}}
		]}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsUnparseableBalance(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [{"address": "GABC", "balance": "not-a-number", "sequence": 1}], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsFractionalBalance(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [{"address": "GABC", "balance": "100.5", "sequence": 1}], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseRejectsNegativeBalance(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [{"address": "GABC", "balance": "-1", "sequence": 1}], "contracts": []}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
}

func TestParseToleratesMissingOptionalFields(t *testing.T) {
	doc := `{"ledger": {"sequence": 1, "timestamp": 0, "network_passphrase": "x"},
		"accounts": [{"address": "GABC", "balance": "1", "sequence": 1}],
		"contracts": [{"contract_id": "C1", "wasm_hash": "ab", "storage": {}}]}`
	s, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Nil(t, s.Accounts[0].Flags)
	require.Nil(t, s.Contracts[0].WasmRef)
}
