package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite

	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewRegistry()
}

func (suite *RegistryTestSuite) TestNames() {
	suite.Equal([]string{FamilyChannel, FamilyMACross, FamilyMarketStructure}, suite.registry.Names())
}

func (suite *RegistryTestSuite) TestCreateWithDefaults() {
	for _, name := range suite.registry.Names() {
		strat, err := suite.registry.Create(name, nil)
		suite.NoError(err, "family %s", name)
		suite.NotEmpty(strat.Name())
		suite.Positive(strat.MinBars())
	}
}

func (suite *RegistryTestSuite) TestCreateWithOverrides() {
	strat, err := suite.registry.Create(FamilyMACross, map[string]float64{
		"fast_period": 5,
		"slow_period": 10,
	})
	suite.Require().NoError(err)

	crossover := strat.(*MACrossStrategy)
	suite.Equal(5, crossover.config.FastPeriod)
	suite.Equal(10, crossover.config.SlowPeriod)
}

func (suite *RegistryTestSuite) TestCreateInvalidOverrides() {
	_, err := suite.registry.Create(FamilyMACross, map[string]float64{
		"fast_period": 21,
		"slow_period": 9,
	})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *RegistryTestSuite) TestCreateUnknownFamily() {
	_, err := suite.registry.Create("nope", nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

func (suite *RegistryTestSuite) TestCreateUnknownParameter() {
	_, err := suite.registry.Create(FamilyChannel, map[string]float64{"bogus": 1})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *RegistryTestSuite) TestDescribe() {
	description, err := suite.registry.Describe(FamilyChannel)
	suite.NoError(err)
	suite.NotEmpty(description)

	_, err = suite.registry.Describe("nope")
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestSchema() {
	schema, err := suite.registry.Schema(FamilyChannel)
	suite.NoError(err)
	suite.Contains(schema, "upper_period")
	suite.Contains(schema, "stop_multiplier")
}
