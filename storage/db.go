package storage

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

// DB representa a conexão com o banco de dados PostgreSQL.
type DB struct {
	store
	conn *sqlx.DB
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{store: store{q: db}, conn: db}, nil
}

// Close encerra a conexão com o banco.
func (d *DB) Close() error {
	return d.conn.Close()
}

// runMigrations executa as migrações usando sql-migrate.
func runMigrations(db *sql.DB) error {
	migrations := &migrate.FileMigrationSource{
		Dir: "./storage/migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		log.Printf("Aplicadas %d migrações ao banco de dados.", n)
	}
	return nil
}

// store implementa Store sobre qualquer executor sqlx (conexão ou transação).
type store struct {
	q sqlx.Ext
}

// Transact abre uma transação quando chamado sobre a conexão; quando já
// estamos dentro de uma transação, apenas reutiliza a corrente.
func (s store) Transact(fn func(Store) error) error {
	db, ok := s.q.(*sqlx.DB)
	if !ok {
		return fn(s)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("falha ao abrir transação: %w", err)
	}
	if err := fn(store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Falha ao desfazer transação: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("falha ao confirmar transação: %w", err)
	}
	return nil
}
