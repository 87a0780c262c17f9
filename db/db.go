package db

import (
	"fmt"
	"log"

	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

// Transaction runs fn inside a single database transaction; any error
// rolls back every statement fn issued.
func (g *GormDB) Transaction(fn func(tx *gorm.DB) error) error {
	return g.DB.Transaction(fn)
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	log.Printf("Connecting to postgres: %s@%s:%d/%s", c.PostgresUser, c.PostgresHost, c.PostgresPort, c.PostgresDB)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	return gormDB
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.RewardAccount{},
		&models.Transaction{},
		&models.RewardItem{},
		&models.Notification{},
		&models.CollectedWaste{},
		&models.Media{},
		&models.Blacklist{},
	)
}

// SeedRewardCatalog inserts the default redeemable offers.
func SeedRewardCatalog(db *gorm.DB) error {
	items := []models.RewardItem{
		{Name: "Reusable Tote Bag", Cost: 50, Description: "Organic cotton tote for plastic-free shopping", CollectionInfo: "Pick up at any partner recycling hub", IsAvailable: true},
		{Name: "Compost Starter Kit", Cost: 120, Description: "Counter-top compost bin with starter culture", CollectionInfo: "Shipped to your registered address", IsAvailable: true},
		{Name: "Transit Pass (1 week)", Cost: 200, Description: "Seven days of unlimited city transit", CollectionInfo: "Code delivered by notification", IsAvailable: true},
	}

	for _, item := range items {
		if err := db.FirstOrCreate(&item, models.RewardItem{Name: item.Name}).Error; err != nil {
			return err
		}
	}

	return nil
}
