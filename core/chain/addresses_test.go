package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBook = `
[chains.747474]
factory = "0x1111111111111111111111111111111111111111"

[chains.747474.versions]
0_4_0 = "0x4444444444444444444444444444444444444444"
"v0.5.0" = "0x5555555555555555555555555555555555555555"

[chains.8453]
factory = "0x2222222222222222222222222222222222222222"
`

func newTestBook(t *testing.T) *AddressBook {
	t.Helper()
	book, err := ParseAddressBook(testBook)
	require.NoError(t, err)
	return book
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.5.0", "0_5_0"},
		{"0_5_0", "0_5_0"},
		{"v0.5.0", "0_5_0"},
		{" 1.2.3 ", "1_2_3"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeVersion(tc.in), tc.in)
		assert.Equal(t, tc.want, NormalizeVersion(NormalizeVersion(tc.in)), "idempotent for %s", tc.in)
	}
}

func TestResolve_Latest(t *testing.T) {
	book := newTestBook(t)

	for _, id := range []uint64{747474, 8453} {
		got, err := book.Resolve(id, types.LatestVersion)
		require.NoError(t, err)
		assert.Equal(t, common.Address{}, got.Logic)
		assert.NotEqual(t, common.Address{}, got.Factory)
	}
}

func TestResolve_DotAndUnderscoreAreEquivalent(t *testing.T) {
	book := newTestBook(t)

	dotted, err := book.Resolve(747474, "0.5.0")
	require.NoError(t, err)
	underscored, err := book.Resolve(747474, "0_5_0")
	require.NoError(t, err)

	assert.Equal(t, dotted, underscored)
	assert.Equal(t, common.HexToAddress("0x5555555555555555555555555555555555555555"), dotted.Logic)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), dotted.Factory)
}

func TestResolve_UnknownVersion(t *testing.T) {
	book := newTestBook(t)

	for _, d := range All() {
		_, err := book.Resolve(d.ID, "9.9.9")
		assert.ErrorIs(t, err, types.ErrUnsupportedVersion, "chain %d", d.ID)
	}

	_, err := book.Resolve(8453, "0.5.0")
	assert.ErrorIs(t, err, types.ErrUnsupportedVersion)
}

func TestResolve_UnsupportedChain(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Resolve(424242, types.LatestVersion)
	assert.ErrorIs(t, err, types.ErrUnsupportedChain)

	// supported chain without a registered factory
	_, err = book.Resolve(1, types.LatestVersion)
	assert.ErrorIs(t, err, types.ErrUnsupportedChain)
	assert.Contains(t, err.Error(), "chain 1 is supported but has no factory in the address book")
}

func TestParseAddressBook_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown chain", "[chains.424242]\nfactory = \"0x1111111111111111111111111111111111111111\"\n"},
		{"non numeric chain", "[chains.katana]\nfactory = \"0x1111111111111111111111111111111111111111\"\n"},
		{"bad factory", "[chains.8453]\nfactory = \"0x1234\"\n"},
		{"bad version address", "[chains.8453]\nfactory = \"0x1111111111111111111111111111111111111111\"\n[chains.8453.versions]\n0_5_0 = \"nope\"\n"},
		{"not toml", "[chains"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAddressBook(tc.data)
			assert.Error(t, err)
		})
	}
}

func TestLoadAddressBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.toml")
	require.NoError(t, os.WriteFile(path, []byte(testBook), 0o644))

	book, err := LoadAddressBook(path)
	require.NoError(t, err)
	assert.True(t, book.Has(747474))
	assert.False(t, book.Has(1))
	assert.Equal(t, []string{"0_4_0", "0_5_0"}, book.Versions(747474))

	_, err = LoadAddressBook(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
