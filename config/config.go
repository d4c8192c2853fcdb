package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config reúne toda a configuração do processo, carregada do ambiente.
// Nenhum valor global: a struct é montada no main e passada explicitamente.
type Config struct {
	Port        int    `env:"GALERIA_PORT" envDefault:"8080"`
	DatabaseURL string `env:"GALERIA_DATABASE_URL" envDefault:"host=localhost port=5432 user=galeria password=galeria dbname=galeria sslmode=disable"`

	SolanaRPCURL string `env:"GALERIA_SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`
	SolanaWSURL  string `env:"GALERIA_SOLANA_WS_URL" envDefault:"wss://api.devnet.solana.com"`
	// Chave privada (Base58) do Fee Payer que assina mint e transferências on-chain.
	FeePayerKey string `env:"GALERIA_FEE_PAYER_KEY"`

	// Conta da plataforma: recebe as taxas e pode sacar o saldo não distribuído.
	PlatformOwnerID string `env:"GALERIA_PLATFORM_OWNER_ID"`
	// Taxa inicial do marketplace em basis points (250 = 2,5%).
	InitialFeeBps int64 `env:"GALERIA_INITIAL_FEE_BPS" envDefault:"250"`

	// Desliga a integração on-chain (mint/transfer viram no-ops locais).
	// Útil para desenvolvimento sem um validador Solana.
	LedgerDisabled bool `env:"GALERIA_LEDGER_DISABLED" envDefault:"false"`
}

// Load lê a configuração das variáveis de ambiente.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("falha ao carregar configuração do ambiente: %w", err)
	}
	return cfg, nil
}
