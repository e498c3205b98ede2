package preferences

var labels = map[Language]map[string]string{
	ID: {
		"nav.input":              "Input Penjualan",
		"nav.report":             "Laporan",
		"nav.products":           "Produk",
		"nav.settings":           "Pengaturan",
		"date":                   "Tanggal",
		"product":                "Produk",
		"qty":                    "Qty",
		"price":                  "Harga",
		"total":                  "Total",
		"actions":                "Aksi",
		"search_placeholder":     "Cari produk...",
		"total_omzet":            "Total Omzet",
		"total_profit":           "Total Laba",
		"cards.avg_order":        "Rata-rata Order",
		"cards.margin":           "Margin",
		"report.title":           "Laporan Penjualan",
		"report.weekly_chart":    "Grafik Mingguan",
		"report.top_products":    "Produk Terlaris",
		"report.export_csv":      "Ekspor CSV",
		"report.export_xlsx":     "Ekspor Excel",
		"history.title":          "Riwayat Transaksi",
		"input.save":             "Simpan",
		"input.error_save":       "Gagal menyimpan ke Google Sheets. Silakan coba lagi.",
		"input.saved":            "Transaksi tersimpan",
		"delete.error":           "Gagal menghapus transaksi.",
		"delete.done":            "Transaksi dihapus",
		"product.title":          "Produk",
		"product.name":           "Nama Produk",
		"product.price":          "Harga Jual",
		"product.cost_price":     "Harga Modal",
		"product.stock":          "Stok",
		"product.icon":           "Ikon",
		"product.add_button":     "Tambah Produk",
		"product.error_save":     "Gagal menyimpan produk.",
		"product.error_delete":   "Gagal menghapus produk.",
		"settings.title":         "Pengaturan",
		"settings.full_name":     "Nama Lengkap",
		"settings.email_address": "Alamat Email",
		"settings.photo_url":     "URL Foto",
		"settings.save_button":   "Simpan Perubahan",
		"settings.error_update":  "Gagal memperbarui profil.",
		"language":               "Bahasa",
		"currency":               "Mata Uang",
		"exchange_rate":          "Kurs USD",
		"common.no_data":         "Belum ada data",
		"common.refresh":         "Muat Ulang",
		"common.delete":          "Hapus",
		"common.edit":            "Ubah",
		"common.prev":            "Sebelumnya",
		"common.next":            "Berikutnya",
		"common.showing":         "Menampilkan",
		"common.of":              "dari",
		"input.update":           "Perbarui",
		"product.saved":          "Produk tersimpan",
		"product.deleted":        "Produk dihapus",
		"settings.saved":         "Profil diperbarui",
		"settings.preferences":   "Preferensi",
		"settings.prefs_saved":   "Preferensi tersimpan",
		"settings.prefs_invalid": "Preferensi tidak valid",
		"refresh.done":           "Data dimuat ulang",
		"refresh.error":          "Gagal memuat data dari Google Sheets.",
	},
	EN: {
		"nav.input":              "Sales Input",
		"nav.report":             "Report",
		"nav.products":           "Products",
		"nav.settings":           "Settings",
		"date":                   "Date",
		"product":                "Product",
		"qty":                    "Qty",
		"price":                  "Price",
		"total":                  "Total",
		"actions":                "Actions",
		"search_placeholder":     "Search product...",
		"total_omzet":            "Total Revenue",
		"total_profit":           "Total Profit",
		"cards.avg_order":        "Average Order",
		"cards.margin":           "Margin",
		"report.title":           "Sales Report",
		"report.weekly_chart":    "Weekly Chart",
		"report.top_products":    "Top Products",
		"report.export_csv":      "Export CSV",
		"report.export_xlsx":     "Export Excel",
		"history.title":          "Transaction History",
		"input.save":             "Save",
		"input.error_save":       "Failed to save to Google Sheets. Please try again.",
		"input.saved":            "Transaction saved",
		"delete.error":           "Failed to delete transaction.",
		"delete.done":            "Transaction deleted",
		"product.title":          "Products",
		"product.name":           "Product Name",
		"product.price":          "Selling Price",
		"product.cost_price":     "Cost Price",
		"product.stock":          "Stock",
		"product.icon":           "Icon",
		"product.add_button":     "Add Product",
		"product.error_save":     "Failed to save product.",
		"product.error_delete":   "Failed to delete product.",
		"settings.title":         "Settings",
		"settings.full_name":     "Full Name",
		"settings.email_address": "Email Address",
		"settings.photo_url":     "Photo URL",
		"settings.save_button":   "Save Changes",
		"settings.error_update":  "Failed to update profile.",
		"language":               "Language",
		"currency":               "Currency",
		"exchange_rate":          "USD Rate",
		"common.no_data":         "No data yet",
		"common.refresh":         "Refresh",
		"common.delete":          "Delete",
		"common.edit":            "Edit",
		"common.prev":            "Previous",
		"common.next":            "Next",
		"common.showing":         "Showing",
		"common.of":              "of",
		"input.update":           "Update",
		"product.saved":          "Product saved",
		"product.deleted":        "Product deleted",
		"settings.saved":         "Profile updated",
		"settings.preferences":   "Preferences",
		"settings.prefs_saved":   "Preferences saved",
		"settings.prefs_invalid": "Invalid preferences",
		"refresh.done":           "Data reloaded",
		"refresh.error":          "Failed to load data from Google Sheets.",
	},
}

// T looks up a UI label, returning the key itself when it is unknown.
func (p Preferences) T(key string) string {
	if v, ok := labels[p.Language][key]; ok {
		return v
	}
	return key
}
