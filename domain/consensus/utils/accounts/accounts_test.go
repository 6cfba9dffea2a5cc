package accounts

import (
	"bytes"
	"testing"

	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model"
	"github.com/Hoosat-Oy/treegraphd/domain/consensus/model/externalapi"
	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type mapReader map[string][]byte

func (m mapReader) ReadState(key []byte) ([]byte, bool, error) {
	value, ok := m[string(key)]
	return value, ok, nil
}

func TestAccountSerialization(t *testing.T) {
	tests := []*Account{
		{Balance: uint256.NewInt(0), Nonce: 1},
		{Balance: uint256.NewInt(12345), Nonce: 0},
		{Balance: new(uint256.Int).Lsh(uint256.NewInt(1), 200), Nonce: 1 << 40},
	}
	for _, account := range tests {
		data, err := account.Serialize()
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		decoded, err := DeserializeAccount(data)
		if err != nil {
			t.Fatalf("DeserializeAccount: %v", err)
		}
		if !decoded.Equal(account) {
			t.Fatalf("expected %s, got %s", spew.Sdump(account), spew.Sdump(decoded))
		}
	}

	if _, err := DeserializeAccount([]byte{0xff}); err == nil {
		t.Fatalf("expected an error for a malformed record")
	}
}

func TestAccountKeysSeparateSpaces(t *testing.T) {
	address := common.HexToAddress("0x1000000000000000000000000000000000000001")
	native := AccountKey(externalapi.SpaceNative, address)
	ethereum := AccountKey(externalapi.SpaceEthereum, address)
	if bytes.Equal(native, ethereum) {
		t.Fatalf("the same address must have distinct keys per space")
	}
}

func TestAddBalanceAndEmptyAccounts(t *testing.T) {
	address := common.HexToAddress("0x1000000000000000000000000000000000000001")
	diff := NewStateDiff(mapReader{})

	err := AddBalance(diff, externalapi.SpaceNative, address, uint256.NewInt(10))
	if err != nil {
		t.Fatalf("AddBalance: %v", err)
	}
	account, err := ReadAccount(diff, externalapi.SpaceNative, address)
	if err != nil {
		t.Fatalf("ReadAccount: %v", err)
	}
	if account.Balance.Uint64() != 10 {
		t.Fatalf("unexpected balance %s", account.Balance)
	}

	// Draining the account removes it from the state
	account.Balance.Clear()
	err = WriteAccount(diff, externalapi.SpaceNative, address, account)
	if err != nil {
		t.Fatalf("WriteAccount: %v", err)
	}
	if _, found, _ := diff.ReadState(AccountKey(externalapi.SpaceNative, address)); found {
		t.Fatalf("expected the empty account to be deleted")
	}
}

func TestStateDiffSnapshots(t *testing.T) {
	base := mapReader{"a": []byte("base-a"), "b": []byte("base-b")}
	diff := NewStateDiff(base)

	diff.WriteState([]byte("a"), []byte("a1"))
	snapshot := diff.Snapshot()
	diff.WriteState([]byte("a"), []byte("a2"))
	diff.DeleteState([]byte("b"))
	diff.WriteState([]byte("c"), []byte("c1"))

	if _, found, _ := diff.ReadState([]byte("b")); found {
		t.Fatalf("expected b to be deleted")
	}

	err := diff.RevertToSnapshot(snapshot)
	if err != nil {
		t.Fatalf("RevertToSnapshot: %v", err)
	}

	expected := map[string]string{"a": "a1", "b": "base-b"}
	for key, value := range expected {
		got, found, err := diff.ReadState([]byte(key))
		if err != nil || !found || string(got) != value {
			t.Fatalf("ReadState(%s): expected %s, got %s (found %t, err %v)", key, value, got, found, err)
		}
	}
	if _, found, _ := diff.ReadState([]byte("c")); found {
		t.Fatalf("expected c to be reverted")
	}

	writes := diff.Writes()
	if len(writes) != 1 || string(writes[0].Key) != "a" || string(writes[0].Value) != "a1" {
		t.Fatalf("unexpected writes: %s", spew.Sdump(writes))
	}

	diff.DeleteState([]byte("b"))
	writes = diff.Writes()
	if len(writes) != 2 || writes[1].Value != nil {
		t.Fatalf("expected a deletion write for b: %s", spew.Sdump(writes))
	}

	if err := diff.RevertToSnapshot(100); err == nil {
		t.Fatalf("expected an error for an unknown snapshot")
	}
}

var _ model.StateAccessor = (*StateDiff)(nil)
