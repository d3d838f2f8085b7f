package main

import "supply_order_back_end/internal/models"

// Jeu de données du registre en mémoire
var demoProducts = []models.Product{
	{ID: "1", Name: "軍手", Category: "消耗品", Price: 120, Unit: "双", Supplier: "山田商店", StockStatus: models.DefaultStockStatus},
	{ID: "2", Name: "ウエス", Category: "消耗品", Price: 850, Unit: "袋", Supplier: "山田商店", StockStatus: models.DefaultStockStatus},
	{ID: "3", Name: "切削油", Category: "油脂", Price: 4200, Unit: "缶", Supplier: "東邦化学", StockStatus: models.DefaultStockStatus},
	{ID: "4", Name: "ドリル刃 6mm", Category: "工具", Price: 680, Unit: "本", Supplier: "東邦化学", StockStatus: models.DefaultStockStatus},
	{ID: "5", Name: "マスキングテープ", Category: models.AdminCategory, Price: 210, Unit: models.DefaultUnit, StockStatus: models.DefaultStockStatus},
}

var demoEmployees = []models.Employee{
	{ID: "1001", Name: "佐藤", Factory: "第一工場"},
	{ID: "1002", Name: "鈴木", Factory: "第二工場"},
}
