package metadata

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/utils"
	"fmt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Database string
}

func (c *MySQLConfig) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Database)
}

/*
Config 中 Dialect 为 mysql 时使用 MySQL，为 sqlite 时使用 SQLitePath 指定的文件（":memory:" 为内存数据库）。
*/
type Config struct {
	Dialect        string
	MySQL          MySQLConfig
	SQLitePath     string
	CheckMigration bool
}

func GenerateTestConfig() *Config {
	return &Config{
		Dialect:        DialectSQLite,
		SQLitePath:     ":memory:",
		CheckMigration: true,
	}
}

var db *gorm.DB

func CreateDatabase(config *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Dialect {
	case DialectMySQL, "":
		dialector = mysql.Open(config.MySQL.dsn())
	case DialectSQLite:
		dialector = sqlite.Open(config.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown dialect [%s]", config.Dialect)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(&sqlLogger{logger: logging.NewLogger()}, logger.Config{LogLevel: logger.Info}),
	})
	if err != nil {
		return nil, utils.WrapError(err, "db connection fail")
	}

	if config.Dialect == DialectSQLite {
		// 内存数据库每个连接各自独立，只能保留一个连接
		sqlDB, err := database.DB()
		if err != nil {
			return nil, utils.WrapError(err, "get sql.DB fail")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if config.CheckMigration {
		err = migration(database, config.Dialect)
		if err != nil {
			return nil, utils.WrapError(err, "migration fail")
		}
	}

	return database, nil
}

func migration(db *gorm.DB, dialect string) error {
	tables := []interface{}{
		&PipelineRun{}, &StageCount{}, &DroppedCount{}, &File{},
	}

	if dialect != DialectSQLite {
		db = db.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_ai_ci")
	}

	err := db.AutoMigrate(tables...)
	if err != nil {
		return utils.WrapError(err, "AutoMigrate fail")
	}

	return nil
}

func Init(config *Config) {
	database, err := CreateDatabase(config)
	if err != nil {
		panic(err)
	}

	db = database
}

func DatabaseRaw() *gorm.DB {
	return db
}
