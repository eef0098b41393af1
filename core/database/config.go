package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the SQLite database file. Use ":memory:" for an ephemeral DB.
	Path string `mapstructure:"path" default:"card-catalog.db"`
	// Host is the MySQL host (mysql driver only).
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the MySQL port (mysql driver only).
	Port int `mapstructure:"port" default:"3306"`
	// User is the MySQL user (mysql driver only).
	User string `mapstructure:"user" default:"root"`
	// Password is the MySQL password (mysql driver only).
	Password string `mapstructure:"password" default:""`
	// Name is the MySQL database name (mysql driver only).
	Name string `mapstructure:"name" default:"cardcatalog"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
