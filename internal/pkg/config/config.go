package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 是服务的全量配置。来源优先级: 环境变量 > yaml 文件 > 默认值。
type Config struct {
	App struct {
		Name     string `yaml:"name"`
		Port     int    `yaml:"port"`
		LogLevel string `yaml:"logLevel"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs []string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers       []string `yaml:"brokers"`
			CheckoutTopic string   `yaml:"checkoutTopic"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Nacos struct {
			Enabled     bool   `yaml:"enabled"`
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	// Reservation 下的策略表达式按租户配置，值为 CEL 表达式。
	Reservation struct {
		TenantPolicies map[string]string `yaml:"tenantPolicies"`
	} `yaml:"reservation"`

	Checkout struct {
		// PaymentGatewayURL 非空时走远端支付提供方，否则使用内置的总是通过的占位网关。
		PaymentGatewayURL string `yaml:"paymentGatewayUrl"`
	} `yaml:"checkout"`
}

func defaults() Config {
	var c Config
	c.App.Name = "campus-service"
	c.App.Port = 8080
	c.App.LogLevel = "info"
	c.Infra.Mysql.Addr = "localhost:3306"
	c.Infra.Mysql.User = "root"
	c.Infra.Mysql.Database = "campus"
	c.Infra.Redis.Addrs = []string{"localhost:6379"}
	c.Infra.Kafka.Brokers = []string{"localhost:9092"}
	c.Infra.Kafka.CheckoutTopic = "checkout-confirmed"
	c.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Nacos.Group = "DEFAULT_GROUP"
	return c
}

// Load 读取 yaml 配置文件并应用环境变量覆盖。
// path 为空或文件不存在时仅使用默认值和环境变量，方便本地直接启动。
func Load(path string) (Config, error) {
	c := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, err
			}
		} else if !os.IsNotExist(err) {
			return c, err
		}
	}

	applyEnv(&c)
	return c, nil
}

func applyEnv(c *Config) {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	if port, err := strconv.Atoi(getEnv("APP_PORT", "")); err == nil {
		c.App.Port = port
	}
	c.Infra.Mysql.Addr = getEnv("MYSQL_ADDR", c.Infra.Mysql.Addr)
	c.Infra.Mysql.User = getEnv("MYSQL_USER", c.Infra.Mysql.User)
	c.Infra.Mysql.Password = getEnv("MYSQL_PASSWORD", c.Infra.Mysql.Password)
	c.Infra.Mysql.Database = getEnv("MYSQL_DATABASE", c.Infra.Mysql.Database)
	c.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", c.Infra.Jaeger.Endpoint)
	c.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", c.Infra.Nacos.ServerAddrs)
	c.Infra.Nacos.Namespace = getEnv("NACOS_NAMESPACE", c.Infra.Nacos.Namespace)
	c.Infra.Nacos.Group = getEnv("NACOS_GROUP", c.Infra.Nacos.Group)
	c.Checkout.PaymentGatewayURL = getEnv("PAYMENT_GATEWAY_URL", c.Checkout.PaymentGatewayURL)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
