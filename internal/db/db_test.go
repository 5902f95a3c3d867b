package db

import (
	"testing"

	"github.com/shinyyama/arena-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "plain host",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "arena"},
			want: "u:p@tcp(db:3306)/arena?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "tcp prefix kept",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "tcp(10.0.0.1:3307)", DBName: "arena"},
			want: "u:p@tcp(10.0.0.1:3307)/arena?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "socket path",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "/var/run/mysqld.sock", DBName: "arena"},
			want: "u:p@unix(/var/run/mysqld.sock)/arena?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "cloud sql instance wins",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "ignored", InstanceConnectionName: "proj:asia:db", DBName: "arena"},
			want: "u:p@unix(/cloudsql/proj:asia:db)/arena?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "database url verbatim",
			cfg:  config.Config{DatabaseURL: "u:p@tcp(x:1)/y"},
			want: "u:p@tcp(x:1)/y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDSN(&tt.cfg); got != tt.want {
				t.Fatalf("BuildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "tcp",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "arena"},
			want: "host=db user=u password=p dbname=arena port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "cloud sql socket",
			cfg:  config.Config{DBUser: "u", DBPassword: "p", DBPort: "5432", InstanceConnectionName: "proj:asia:db", DBName: "arena"},
			want: "host=/cloudsql/proj:asia:db user=u password=p dbname=arena sslmode=disable TimeZone=UTC",
		},
		{
			name: "url",
			cfg:  config.Config{DatabaseURL: "postgres://u:p@h:5432/arena"},
			want: "postgres://u:p@h:5432/arena",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPostgresDSN(&tt.cfg); got != tt.want {
				t.Fatalf("BuildPostgresDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	if _, err := Connect(&config.Config{DBDriver: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
