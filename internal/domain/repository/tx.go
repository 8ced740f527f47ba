package repository

// TxRepos agrupa los repositorios ligados a una misma transacción.
// Todo lo que se escriba a través de ellos se confirma o se descarta junto.
type TxRepos struct {
	StockLevels StockLevelRepository
	Movements   MovementRepository
	Variants    VariantRepository
	Warehouses  WarehouseRepository
	Orders      OrderRepository
	Purchases   PurchaseRepository
}
