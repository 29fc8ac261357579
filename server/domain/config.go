package domain

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5000
	DefaultBacklog        = 10
	DefaultReadBufferSize = 4096
	DefaultWriteTimeout   = 5 * time.Second
	DefaultDatabasePath   = "./pushy_data.db"
)

type Config struct {
	Host           string
	Port           int
	Backlog        int
	ReadBufferSize int
	WriteTimeout   time.Duration
	DatabasePath   string
}

func NewConfig() Config {
	return Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Backlog:        DefaultBacklog,
		ReadBufferSize: DefaultReadBufferSize,
		WriteTimeout:   DefaultWriteTimeout,
		DatabasePath:   DefaultDatabasePath,
	}
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Backlog <= 0 {
		errs = append(errs, fmt.Errorf("backlog must be positive, got %d", c.Backlog))
	}
	if c.ReadBufferSize <= 0 {
		errs = append(errs, fmt.Errorf("read buffer size must be positive, got %d", c.ReadBufferSize))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("write timeout must be positive, got %s", c.WriteTimeout))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	return errors.Join(errs...)
}
