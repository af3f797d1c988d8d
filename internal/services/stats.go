package services

import "github.com/zikrya/Showdrop/internal/models"

// ProjectStats считает статистику пула по снимку кодов. Чистая функция.
func ProjectStats(codes []*models.DiscountCode) models.CodeStats {
	stats := models.CodeStats{Total: len(codes)}
	for _, c := range codes {
		if c.Claimed() {
			stats.Claimed++
		}
	}
	stats.Remaining = stats.Total - stats.Claimed
	return stats
}
