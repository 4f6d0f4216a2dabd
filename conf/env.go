package conf

import "fmt"

type EnvironmentEnum int

const (
	LocalEnvironmentEnum EnvironmentEnum = iota
	MainnetEnvironmentEnum
	TestnetEnvironmentEnum
	ExampleEnvironmentEnum
)

var SystemEnvironmentEnum = MainnetEnvironmentEnum

// ConfigDir directory holding conf_<env>.yaml files
var ConfigDir = "./conf"

func (e EnvironmentEnum) String() string {
	switch e {
	case LocalEnvironmentEnum:
		return "loc"
	case TestnetEnvironmentEnum:
		return "testnet"
	case ExampleEnvironmentEnum:
		return "example"
	default:
		return "mainnet"
	}
}

// ParseEnvironment maps the -env flag value, unknown values fall back to mainnet
func ParseEnvironment(env string) EnvironmentEnum {
	switch env {
	case "loc":
		return LocalEnvironmentEnum
	case "testnet":
		return TestnetEnvironmentEnum
	case "example":
		return ExampleEnvironmentEnum
	default:
		return MainnetEnvironmentEnum
	}
}

// GetYaml config file for the current environment
func GetYaml() string {
	return fmt.Sprintf("%s/conf_%s.yaml", ConfigDir, SystemEnvironmentEnum)
}
