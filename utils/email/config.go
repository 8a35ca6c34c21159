package email

type SMTPConfig struct {
	Identity string
	Host     string
	Port     int
	UserName string
	Password string
}

type Config struct {
	SMTP SMTPConfig
}

var globalConfig = Config{}

func Init(config *Config) {
	globalConfig = *config
}

// Enabled 在配置了 SMTP 服务器时返回 true。
func Enabled() bool {
	return len(globalConfig.SMTP.Host) != 0
}

// GenerateTestConfig 指向本机不需要认证的 SMTP 服务，如 MailHog。
func GenerateTestConfig() *Config {
	return &Config{SMTP: SMTPConfig{
		Identity: "bibgraph@localhost",
		Host:     "localhost",
		Port:     1025,
	}}
}
