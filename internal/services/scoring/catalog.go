// Package scoring implements the risk scoring, income segmentation and
// product recommendation policy for bank clients.
package scoring

import (
	"income-recommendation-engine/internal/models"
)

// baseCatalog is the static product catalog keyed by income tier. Reference
// data: initialized once, read-only afterwards.
var baseCatalog = map[models.IncomeTier][]models.ProductOffer{
	models.IncomeTierLow: {
		{
			ProductName: "Кредитная карта с кэшбэком",
			ProductType: models.ProductTypeCreditCard,
			Limit:       models.Float64Ptr(150000),
			Rate:        models.Float64Ptr(24.9),
			Reason:      "Стартовый продукт для клиентов с базовым уровнем дохода",
			Description: "Кредитная карта с кэшбэком 1% на все покупки",
		},
		{
			ProductName: "Накопительный счёт",
			ProductType: models.ProductTypeDeposit,
			Rate:        models.Float64Ptr(6.5),
			Reason:      "Подушка безопасности без ограничений на снятие",
			Description: "Счёт с ежедневным начислением процентов на остаток",
		},
	},
	models.IncomeTierMedium: {
		{
			ProductName: "Стандартная кредитная карта",
			ProductType: models.ProductTypeCreditCard,
			Limit:       models.Float64Ptr(200000),
			Rate:        models.Float64Ptr(18.0),
			Reason:      "Подходит для клиента стандартного сегмента с текущим уровнем дохода",
			Description: "Кредитная карта с базовыми условиями",
		},
		{
			ProductName: "Потребительский кредит",
			ProductType: models.ProductTypeCredit,
			Limit:       models.Float64Ptr(1000000),
			Rate:        models.Float64Ptr(14.5),
			Reason:      "Доступен при стабильном подтверждённом доходе",
			Description: "Кредит наличными на любые цели",
		},
		{
			ProductName: "Инвестиционный депозит",
			ProductType: models.ProductTypeDeposit,
			Rate:        models.Float64Ptr(8.5),
			Reason:      "Прогнозируемый доход позволяет рекомендовать инвестиционные продукты",
			Description: "Депозит с повышенной процентной ставкой для долгосрочных вложений",
		},
	},
	models.IncomeTierHigh: {
		{
			ProductName: "Премиум кредитная карта",
			ProductType: models.ProductTypeCreditCard,
			Limit:       models.Float64Ptr(500000),
			Rate:        models.Float64Ptr(12.5),
			Reason:      "На основе прогноза дохода и VIP сегмента клиента",
			Description: "Премиум кредитная карта с кэшбэком 5% и льготным периодом",
		},
		{
			ProductName: "Премиум кредит",
			ProductType: models.ProductTypeCredit,
			Limit:       models.Float64Ptr(2000000),
			Rate:        models.Float64Ptr(10.5),
			Reason:      "Премиум сегмент и высокий прогнозируемый доход",
			Description: "Кредит на крупные покупки с льготной процентной ставкой",
		},
		{
			ProductName: "Инвестиционный депозит",
			ProductType: models.ProductTypeDeposit,
			Rate:        models.Float64Ptr(8.5),
			Reason:      "Высокий прогнозируемый доход позволяет рекомендовать инвестиционные продукты",
			Description: "Депозит с повышенной процентной ставкой для долгосрочных вложений",
		},
		{
			ProductName: "Страхование жизни",
			ProductType: models.ProductTypeInsurance,
			Reason:      "Рекомендуется для клиентов премиум сегмента",
			Description: "Комплексная страховка жизни и здоровья",
		},
	},
}

// BaseOffers returns the catalog slice for a tier. Callers must not mutate
// the returned offers; the policy engine copies before post-processing.
func BaseOffers(tier models.IncomeTier) []models.ProductOffer {
	return baseCatalog[tier]
}

// conservativeSavingsOffer is the synthetic offer appended for low-risk
// clients regardless of tier.
func conservativeSavingsOffer() models.ProductOffer {
	return models.ProductOffer{
		ProductName: "Сберегательный вклад",
		ProductType: models.ProductTypeDeposit,
		Rate:        models.Float64Ptr(7.0),
		Reason:      "Низкий рисковый профиль позволяет предложить накопительный продукт",
		Description: "Вклад с фиксированной ставкой и гарантией возврата средств",
	}
}

// basicCreditCardOffer is the synthetic fallback for high-risk low-income
// clients: a reduced limit at an elevated rate.
func basicCreditCardOffer() models.ProductOffer {
	return models.ProductOffer{
		ProductName: "Базовая кредитная карта",
		ProductType: models.ProductTypeCreditCard,
		Limit:       models.Float64Ptr(100000),
		Rate:        models.Float64Ptr(28.0),
		Reason:      "Сниженный лимит с учётом высокого рискового профиля клиента",
		Description: "Кредитная карта с минимальным набором условий",
	}
}
