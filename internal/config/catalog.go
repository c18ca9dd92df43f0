package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"hydrocli/pkg/contracts/domain"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog holds the static tables the pipeline is driven by. It is loaded once
// and treated as read-only afterwards.
type Catalog struct {
	Piezometer    PiezometerCatalog `yaml:"piezometer"`
	Soil          SoilCatalog       `yaml:"soil"`
	Campaigns     []CampaignEntry   `yaml:"campaigns" validate:"dive"`
	Outliers      OutlierSettings   `yaml:"outliers"`
	MissingValues []string          `yaml:"missing_values"`

	campaigns []domain.Campaign
}

// PiezometerCatalog holds the column rename dictionary and drop list
type PiezometerCatalog struct {
	Rename map[string]string `yaml:"rename" validate:"dive,keys,required,endkeys,required"`
	Drop   []string          `yaml:"drop" validate:"dive,required"`
}

// SoilCatalog holds datalogger port maps and accepted timestamp layouts
type SoilCatalog struct {
	TimestampLayouts []string      `yaml:"timestamp_layouts" validate:"required,min=1,dive,required"`
	Devices          []DeviceEntry `yaml:"devices" validate:"dive"`
}

// DeviceEntry maps one datalogger's port labels to sensor-depth ids
type DeviceEntry struct {
	ID            string            `yaml:"id" validate:"required"`
	TimestampPort string            `yaml:"timestamp_port" validate:"required"`
	Ports         map[string]string `yaml:"ports" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

// CampaignEntry is the on-disk form of a campaign; dates are YYYY-MM-DD
type CampaignEntry struct {
	Name  string `yaml:"name" validate:"required"`
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

// OutlierSettings configures the campaign outlier filter
type OutlierSettings struct {
	ZScoreThreshold float64 `yaml:"zscore_threshold" validate:"gt=0"`
}

// DefaultCatalog returns the embedded catalog
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog loads the catalog from path, or the embedded default when path is empty
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// ParseCatalog decodes and validates a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	cat := &Catalog{
		Outliers: OutlierSettings{ZScoreThreshold: DefaultZScoreThreshold},
	}
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate checks struct constraints, campaign windows and device ids, and
// caches the parsed campaign list.
func (c *Catalog) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	seen := make(map[string]bool, len(c.Soil.Devices))
	for _, d := range c.Soil.Devices {
		if seen[d.ID] {
			return fmt.Errorf("duplicate device %q", d.ID)
		}
		seen[d.ID] = true
		if _, clash := d.Ports[d.TimestampPort]; clash {
			return fmt.Errorf("device %q maps its timestamp port %q to a sensor", d.ID, d.TimestampPort)
		}
	}

	campaigns := make([]domain.Campaign, 0, len(c.Campaigns))
	for _, e := range c.Campaigns {
		start, err := time.Parse(DailyLayout, e.Start)
		if err != nil {
			return fmt.Errorf("campaign %q: invalid start: %w", e.Name, err)
		}
		end, err := time.Parse(DailyLayout, e.End)
		if err != nil {
			return fmt.Errorf("campaign %q: invalid end: %w", e.Name, err)
		}
		campaigns = append(campaigns, domain.Campaign{Name: e.Name, Start: start, End: end})
	}
	if err := domain.CheckCampaigns(campaigns); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}
	c.campaigns = campaigns

	return nil
}

// CampaignList returns the campaigns in catalog order
func (c *Catalog) CampaignList() []domain.Campaign {
	out := make([]domain.Campaign, len(c.campaigns))
	copy(out, c.campaigns)
	return out
}

// PortMaps returns one PortMap per device, keyed by device id. The timestamp
// port is present with an empty sensor id.
func (c *Catalog) PortMaps() map[string]domain.PortMap {
	maps := make(map[string]domain.PortMap, len(c.Soil.Devices))
	for _, d := range c.Soil.Devices {
		pm := make(domain.PortMap, len(d.Ports)+1)
		pm[d.TimestampPort] = ""
		for port, sensor := range d.Ports {
			pm[port] = sensor
		}
		maps[d.ID] = pm
	}
	return maps
}

// MissingTokens returns the cell values read as missing, "#N/D" when none are configured
func (c *Catalog) MissingTokens() []string {
	if len(c.MissingValues) == 0 {
		return []string{"#N/D"}
	}
	out := make([]string, len(c.MissingValues))
	copy(out, c.MissingValues)
	return out
}
