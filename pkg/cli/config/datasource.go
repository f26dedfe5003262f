package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/service/fixture"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	DataSourceCRM     = "crm"
	DataSourceFixture = "fixture"
)

// DataSource picks the remote side of sync and the remote listing endpoints
type DataSource struct {
	kind        string
	fixturePath string
}

func (x *DataSource) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data-source",
			Usage:       "Remote data source (crm or fixture)",
			Category:    "Data Source",
			Value:       DataSourceCRM,
			Sources:     cli.EnvVars("TALENTBRIDGE_DATA_SOURCE"),
			Destination: &x.kind,
		},
		&cli.StringFlag{
			Name:        "fixture-path",
			Usage:       "YAML file seeding the fixture data source",
			Category:    "Data Source",
			Sources:     cli.EnvVars("TALENTBRIDGE_FIXTURE_PATH"),
			Destination: &x.fixturePath,
		},
	}
}

func (x DataSource) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", x.kind),
		slog.String("fixture_path", x.fixturePath),
	)
}

// Configure returns the fixture source when selected. For the crm kind it
// returns nil so the CRM sync orchestrator is used.
func (x *DataSource) Configure() (interfaces.DataSource, error) {
	switch x.kind {
	case "", DataSourceCRM:
		return nil, nil

	case DataSourceFixture:
		if x.fixturePath == "" {
			logging.Default().Info("Using empty fixture data source")
			return fixture.New(), nil
		}
		src, err := fixture.Load(x.fixturePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load fixture data", goerr.V(PathKey, x.fixturePath))
		}
		logging.Default().Info("Using fixture data source", "path", x.fixturePath)
		return src, nil

	default:
		return nil, goerr.Wrap(ErrInvalidFlag, "invalid data source",
			goerr.V(FlagKey, "data-source"), goerr.V("value", x.kind))
	}
}
