package domain

// Причины неудачи, которые попадают в ответ клиенту
const (
	FailurePrefix         = "크롤링 실패: "
	ReasonSearchFailed    = "검색 실행 실패"
	ReasonURLPattern      = "URL 패턴 분석 실패"
	ReasonCrawlErrorLabel = "크롤링 오류: "
)

// CrawlOutcome - итог одного запроса: либо CrawlSucceeded, либо CrawlFailed
type CrawlOutcome interface {
	isCrawlOutcome()
}

// CrawlSucceeded - оркестратор дошел до конца.
// Любая из цен может отсутствовать, если ее не нашли на своей вкладке.
type CrawlSucceeded struct {
	SourceURL    string
	SaleLowest   *int64
	JeonseLowest *int64
	// Поля 월세 пока всегда nil: модель данных сайта для них не разобрана
	WolseDepositLowest *int64
	WolseMonthlyLowest *int64
}

// CrawlFailed - запрос завершился на одном из терминальных шагов
type CrawlFailed struct {
	Reason string
	Cause  error
}

func (CrawlSucceeded) isCrawlOutcome() {}
func (CrawlFailed) isCrawlOutcome()    {}

// CrawlResult создается ровно один раз на запрос
type CrawlResult struct {
	Address string
	Outcome CrawlOutcome
}

// Succeeded сообщает, завершился ли запрос без терминальной ошибки
func (r CrawlResult) Succeeded() bool {
	_, ok := r.Outcome.(CrawlSucceeded)
	return ok
}

// SourceURL повторяет старый контракт API: при ошибке поле
// содержит текст причины вместо адреса.
func (r CrawlResult) SourceURL() string {
	switch o := r.Outcome.(type) {
	case CrawlSucceeded:
		return o.SourceURL
	case CrawlFailed:
		return FailurePrefix + o.Reason
	default:
		return ""
	}
}

// FailureReason возвращает причину неудачи или пустую строку
func (r CrawlResult) FailureReason() string {
	if o, ok := r.Outcome.(CrawlFailed); ok {
		return o.Reason
	}
	return ""
}

// Prices возвращает найденные цены продажи и 전세
func (r CrawlResult) Prices() (sale, jeonse *int64) {
	if o, ok := r.Outcome.(CrawlSucceeded); ok {
		return o.SaleLowest, o.JeonseLowest
	}
	return nil, nil
}

// NewFailedResult собирает результат-заглушку для неудачного запроса
func NewFailedResult(address, reason string, cause error) CrawlResult {
	return CrawlResult{
		Address: address,
		Outcome: CrawlFailed{Reason: reason, Cause: cause},
	}
}
