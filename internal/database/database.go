package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

// ScyllaManager garde une session par rôle logique (catalog, staff, ledger)
type ScyllaManager struct {
	sessions map[string]*gocql.Session
	configs  map[string]ScyllaKeyspaceConfig
	mu       sync.Mutex
}

// Rôles logiques des keyspaces
const (
	KeyspaceCatalog = "catalog"
	KeyspaceStaff   = "staff"
	KeyspaceLedger  = "ledger"
)

// --- Variables Globales ---
// Chaque client reste nil si le service correspondant n'est pas configuré.
var (
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
)

// ConnectDatabases ouvre les connexions configurées. Aucune n'est obligatoire :
// un service absent ou injoignable est journalisé et laissé à nil.
func ConnectDatabases(withScylla bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if withScylla {
		if err := InitScyllaDB(); err != nil {
			log.Fatalf("❌ Échec initialisation ScyllaDB: %v", err)
		}
	}

	if err := connectRedis(ctx); err != nil {
		log.Printf("⚠️ Redis indisponible: %v", err)
	}
	if err := connectElastic(); err != nil {
		log.Printf("⚠️ Elasticsearch indisponible, recherche en mémoire: %v", err)
	}
	if err := connectMinIO(ctx); err != nil {
		log.Printf("⚠️ MinIO indisponible, pas d'archivage: %v", err)
	}
}

// =============================================
// SCYLLA DB
// =============================================

// InitScyllaDB initialise le gestionnaire et ouvre une session par keyspace
func InitScyllaDB() error {
	Scylla = &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  loadScyllaConfigs(),
	}
	if len(Scylla.configs) == 0 {
		return fmt.Errorf("aucun keyspace configuré (SCYLLA_KS_*_KEYSPACE)")
	}

	for role := range Scylla.configs {
		session, err := Scylla.GetSession(role)
		if err != nil {
			return fmt.Errorf("échec initialisation keyspace %s: %v", role, err)
		}
		if err := EnsureSchema(session, role); err != nil {
			return err
		}
	}
	return nil
}

func loadScyllaConfigs() map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	hosts := strings.Split(os.Getenv("SCYLLA_HOSTS"), ",")
	sslEnabled := strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true"
	caPath := os.Getenv("SCYLLA_SSL_CA_PATH")

	roles := map[string]string{
		KeyspaceCatalog: "PRODUCTS",
		KeyspaceStaff:   "STAFF",
		KeyspaceLedger:  "ORDERS",
	}
	for role, prefix := range roles {
		ks := os.Getenv("SCYLLA_KS_" + prefix + "_KEYSPACE")
		if ks == "" {
			continue
		}
		configs[role] = ScyllaKeyspaceConfig{
			Hosts:       hosts,
			Keyspace:    ks,
			Username:    os.Getenv("SCYLLA_KS_" + prefix + "_ROLE"),
			Password:    os.Getenv("SCYLLA_KS_" + prefix + "_PASSWORD"),
			SSLEnabled:  sslEnabled,
			CACertPath:  caPath,
			Timeout:     5 * time.Second,
			NumConns:    4,
			Consistency: gocql.Quorum,
		}
	}
	return configs
}

func createScyllaCluster(config ScyllaKeyspaceConfig) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns
	cluster.ReconnectInterval = time.Second
	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	if config.SSLEnabled && config.CACertPath != "" {
		caCert, err := os.ReadFile(config.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("impossible de lire le certificat CA: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("impossible de parser le certificat CA")
		}
		cluster.SslOpts = &gocql.SslOptions{
			Config: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster, nil
}

// GetSession retourne la session du rôle donné, recréée si elle ne répond plus
func (sm *ScyllaManager) GetSession(role string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[role]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", role)
	}

	if session, ok := sm.sessions[role]; ok {
		if err := session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return session, nil
		}
		session.Close()
	}

	cluster, err := createScyllaCluster(config)
	if err != nil {
		return nil, fmt.Errorf("erreur configuration cluster pour %s: %v", role, err)
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %v", role, err)
	}

	sm.sessions[role] = session
	log.Printf("✅ Session ScyllaDB ouverte (%s → %s)", role, config.Keyspace)
	return session, nil
}

// CloseScylla ferme toutes les sessions ScyllaDB
func CloseScylla() {
	if Scylla == nil {
		return
	}
	Scylla.mu.Lock()
	defer Scylla.mu.Unlock()
	for role, session := range Scylla.sessions {
		session.Close()
		log.Printf("🔌 Session ScyllaDB fermée (%s)", role)
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context) error {
	addr := os.Getenv("REDIS_HOST")
	if addr == "" {
		return fmt.Errorf("REDIS_HOST non configuré")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}
	Redis = client
	log.Println("✅ Connecté à Redis")
	return nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic() error {
	url := os.Getenv("ELASTIC_URL")
	if url == "" {
		return fmt.Errorf("ELASTIC_URL non configuré")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  os.Getenv("ELASTIC_USER"),
		Password:  os.Getenv("ELASTIC_PASSWORD"),
	})
	if err != nil {
		return err
	}
	res, err := client.Info()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("réponse %s", res.Status())
	}

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
	return nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context) error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT non configuré")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		return err
	}

	bucketName := MinIOBucket()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return err
		}
		log.Println("🪣 Bucket créé :", bucketName)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", endpoint)
	return nil
}

// MinIOBucket retourne le bucket utilisé pour les images et les bons de commande
func MinIOBucket() string {
	if b := os.Getenv("MINIO_BUCKET"); b != "" {
		return b
	}
	return "supply-orders"
}
