package database

import (
	"fmt"
	"log"

	"github.com/gocql/gocql"
)

// Tables créées au démarrage si elles n'existent pas, par rôle de keyspace
var schema = map[string][]string{
	KeyspaceCatalog: {
		`CREATE TABLE IF NOT EXISTS products (
			product_id text PRIMARY KEY,
			name text, category text, price double, unit text,
			supplier text, stock_status text, image text, updated_at timestamp)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			bucket text, created_at timestamp, audit_id uuid,
			actor text, action text, resource text, resource_id text,
			old_value text, new_value text, ip_address text,
			PRIMARY KEY (bucket, created_at, audit_id)
		) WITH CLUSTERING ORDER BY (created_at DESC, audit_id ASC)`,
	},
	KeyspaceStaff: {
		`CREATE TABLE IF NOT EXISTS employees (
			employee_id text PRIMARY KEY,
			name text, factory text, code_name text)`,
	},
	KeyspaceLedger: {
		`CREATE TABLE IF NOT EXISTS order_lines (
			order_id text, line_no int,
			created_at timestamp, orderer text, supplier text,
			product_name text, quantity int, unit text, is_urgent boolean,
			status text, received_quantity int, received_at timestamp,
			PRIMARY KEY (order_id, line_no))`,
	},
}

// Requêtes utilisées par le backend Scylla
const (
	StmtListProducts  = `SELECT product_id, name, category, price, unit, supplier, stock_status, image, updated_at FROM products`
	StmtGetProduct    = StmtListProducts + ` WHERE product_id = ?`
	StmtInsertProduct = `INSERT INTO products (product_id, name, category, price, unit, supplier, stock_status, image, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	StmtInsertProductIfAbsent = StmtInsertProduct + ` IF NOT EXISTS`

	StmtListEmployees = `SELECT employee_id, name, factory, code_name FROM employees`

	StmtInsertLine = `INSERT INTO order_lines (order_id, line_no, created_at, orderer, supplier, product_name,
		quantity, unit, is_urgent, status, received_quantity, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	StmtListLines    = `SELECT order_id, line_no, created_at, orderer, supplier, product_name, quantity, unit, is_urgent, status, received_quantity, received_at FROM order_lines`
	StmtLinesByOrder = StmtListLines + ` WHERE order_id = ?`
	StmtMarkReceived = `UPDATE order_lines SET status = ?, received_at = ? WHERE order_id = ? AND line_no = ? IF EXISTS`

	StmtInsertAudit = `INSERT INTO audit_logs (bucket, created_at, audit_id, actor, action, resource, resource_id, old_value, new_value, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	StmtListAudit = `SELECT created_at, audit_id, actor, action, resource, resource_id, old_value, new_value, ip_address
		FROM audit_logs WHERE bucket = ? LIMIT ?`
)

// AuditBucket est la partition unique du journal d'audit
const AuditBucket = "products"

// EnsureSchema crée les tables d'un keyspace
func EnsureSchema(session *gocql.Session, role string) error {
	for _, stmt := range schema[role] {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("création schéma %s: %v", role, err)
		}
	}
	log.Printf("✅ Schéma ScyllaDB prêt (%s)", role)
	return nil
}
