package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lagoon-protocol/vault-deployer/core/chain"
)

const (
	safeAppURL   = "https://app.safe.global/home?safe=%s:%s"
	lagoonAppURL = "https://app.lagoon.finance/vault/%d/%s"
)

// Header is the fixed column order of the exported CSV.
var Header = []string{
	"underlyingSymbol",
	"name",
	"symbol",
	"chain",
	"currationAddr",
	"safeLink",
	"feeReceiver",
	"nav",
	"vaultAddr",
	"url",
}

// VaultSummary is one row of the report.
type VaultSummary struct {
	UnderlyingSymbol string `json:"underlyingSymbol"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Chain            string `json:"chain"`
	CurrationAddr    string `json:"currationAddr"`
	SafeLink         string `json:"safeLink"`
	FeeReceiver      string `json:"feeReceiver"`
	Nav              string `json:"nav"`
	VaultAddr        string `json:"vaultAddr"`
	URL              string `json:"url"`
}

func NewSummary(desc chain.Descriptor, vault common.Address, st *VaultState) *VaultSummary {
	return &VaultSummary{
		UnderlyingSymbol: st.AssetSymbol,
		Name:             st.Name,
		Symbol:           st.Symbol,
		Chain:            desc.Name,
		CurrationAddr:    st.Safe.Hex(),
		SafeLink:         fmt.Sprintf(safeAppURL, desc.ShortName, st.Safe.Hex()),
		FeeReceiver:      st.FeeReceiver.Hex(),
		Nav:              st.ValuationManager.Hex(),
		VaultAddr:        vault.Hex(),
		URL:              fmt.Sprintf(lagoonAppURL, desc.ID, vault.Hex()),
	}
}

func (s *VaultSummary) fields() []string {
	return []string{
		s.UnderlyingSymbol,
		s.Name,
		s.Symbol,
		s.Chain,
		s.CurrationAddr,
		s.SafeLink,
		s.FeeReceiver,
		s.Nav,
		s.VaultAddr,
		s.URL,
	}
}

// WriteCSV writes the header row and one row per summary. Every field is a
// JSON string literal so commas and quotes inside names stay unambiguous.
func WriteCSV(w io.Writer, summaries []*VaultSummary) error {
	var sb strings.Builder
	sb.WriteString(strings.Join(Header, ","))
	sb.WriteByte('\n')

	for _, s := range summaries {
		for i, field := range s.fields() {
			if i > 0 {
				sb.WriteByte(',')
			}
			quoted, err := quote(field)
			if err != nil {
				return err
			}
			sb.WriteString(quoted)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
