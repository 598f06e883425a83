package xccdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

const benchmark11 = `<?xml version="1.0" encoding="UTF-8"?>
<Benchmark xmlns="http://checklists.nist.gov/xccdf/1.1" id="RHEL_9_STIG">
  <title>Red Hat Enterprise Linux 9 STIG</title>
  <Group id="V-257777">
    <title>SRG-OS-000480-GPOS-00227</title>
    <Rule id="RHEL-09-211010" severity="high">
      <version>RHEL-09-211010</version>
      <title>RHEL 9 must be a vendor-supported release.</title>
      <description>An operating system release is considered supported if the vendor continues to provide patches.</description>
      <ident system="http://cyber.mil/cci">CCI-000366</ident>
      <fixtext fixref="F-1">Upgrade to a supported version of RHEL 9.</fixtext>
      <check system="C-1">
        <check-content>Verify the version with: $ cat /etc/redhat-release</check-content>
      </check>
    </Rule>
  </Group>
  <Group id="V-230221">
    <Rule id="rhel-08-010000" severity="bogus">
      <title>RHEL 8 must be a vendor-supported release.</title>
    </Rule>
  </Group>
</Benchmark>`

const benchmark12 = `<?xml version="1.0"?>
<xccdf:Benchmark xmlns:xccdf="http://checklists.nist.gov/xccdf/1.2">
  <xccdf:Group>
    <xccdf:Rule id="xccdf_mil.disa.stig_rule_SV-257777r925318_rule">
      <xccdf:version>RHEL-09-211010</xccdf:version>
      <xccdf:title>Supported release</xccdf:title>
      <xccdf:check><xccdf:check-content>Check it.</xccdf:check-content></xccdf:check>
    </xccdf:Rule>
    <xccdf:Rule id="xccdf_org_rule_generic">
      <xccdf:title>No version token</xccdf:title>
    </xccdf:Rule>
  </xccdf:Group>
</xccdf:Benchmark>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Format(t *testing.T) {
	assert.Equal(t, domain.FormatXCCDF, New().Format())
}

func TestLoader_Load_XCCDF11(t *testing.T) {
	path := writeFile(t, "rhel9.xml", benchmark11)

	records, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "RHEL-09-211010", first.ID)
	assert.Equal(t, domain.SeverityHigh, first.Severity)
	assert.Equal(t, "RHEL 9 must be a vendor-supported release.", first.Title)
	assert.Contains(t, first.Description, "vendor continues")
	assert.Equal(t, "Verify the version with: $ cat /etc/redhat-release", first.CheckProcedure)
	assert.Equal(t, "Upgrade to a supported version of RHEL 9.", first.FixProcedure)
	assert.Equal(t, domain.Release9, first.ReleaseVersion)
	assert.Equal(t, "RHEL-09-211010", first.RuleVersion)
	assert.Equal(t, []string{"CCI-000366"}, first.References)
	assert.Equal(t, path, first.SourcePath)

	second := records[1]
	assert.Equal(t, "rhel-08-010000", second.ID)
	assert.Equal(t, domain.SeverityMedium, second.Severity)
	assert.Equal(t, domain.Release8, second.ReleaseVersion)
	assert.Empty(t, second.CheckProcedure)
	assert.Empty(t, second.FixProcedure)
}

func TestLoader_Load_XCCDF12_VersionFromRuleVersion(t *testing.T) {
	path := writeFile(t, "rhel9-1.2.xml", benchmark12)

	records, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "xccdf_mil.disa.stig_rule_SV-257777r925318_rule", records[0].ID)
	assert.Equal(t, domain.Release9, records[0].ReleaseVersion)
	assert.Equal(t, "Check it.", records[0].CheckProcedure)

	assert.Equal(t, domain.ReleaseUnknown, records[1].ReleaseVersion)
}

func TestLoader_Load_NoRules(t *testing.T) {
	path := writeFile(t, "empty.xml", `<Benchmark><title>Nothing</title></Benchmark>`)

	records, err := New().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoader_Load_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `<Benchmark><Rule id="RHEL-09-000001"><title>x</title>`},
		{"not xml", `{"controls": []}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.xml", tt.content)

			records, err := New().Load(context.Background(), path)
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
			assert.Nil(t, records)
		})
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "missing.xml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_Cancelled(t *testing.T) {
	path := writeFile(t, "rhel9.xml", benchmark11)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
