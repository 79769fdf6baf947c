package domain

// TabKind - вкладка рынка на странице объекта
type TabKind int

const (
	TabSale  TabKind = iota + 1 // 매매
	TabLease                    // 전세
)

// Code возвращает значение сегмента-селектора вкладки в URL.
// Это же значение сайт кладет в поле t_type своих JSON-ответов.
func (k TabKind) Code() string {
	switch k {
	case TabSale:
		return "1"
	case TabLease:
		return "2"
	default:
		return ""
	}
}

func (k TabKind) String() string {
	switch k {
	case TabSale:
		return "sale"
	case TabLease:
		return "lease"
	default:
		return "unknown"
	}
}

// PriceQuery - уже нормализованный адрес, по которому ищем цены
type PriceQuery struct {
	Address string
}

// TabURLPair - пара адресов вкладок одного и того же объекта
type TabURLPair struct {
	SaleURL string
	RentURL string
}

// URLFor возвращает адрес вкладки нужного типа
func (p TabURLPair) URLFor(kind TabKind) string {
	if kind == TabLease {
		return p.RentURL
	}
	return p.SaleURL
}

// CapturedResponse - тело сетевого ответа, перехваченного во время навигации
type CapturedResponse struct {
	URL  string
	Body string
}

// ExtractedPrice - результат каскада извлечения.
// Found == false означает "цена не найдена", это не ошибка.
type ExtractedPrice struct {
	Won      int64
	Found    bool
	Strategy string // какая стратегия дала результат
}

// NotFound - пустой результат извлечения
func NotFound() ExtractedPrice {
	return ExtractedPrice{}
}

// WonPtr возвращает nil, если цена не найдена
func (p ExtractedPrice) WonPtr() *int64 {
	if !p.Found {
		return nil
	}
	v := p.Won
	return &v
}

// ListingURLInfo - разбор адреса страницы объекта без браузера
type ListingURLInfo struct {
	Pair           TabURLPair
	CurrentTab     TabKind
	OppositeURL    string
	EncodedAddress string
	DecodedAddress string // пусто, если сегмент не удалось раскодировать
}

// SiteProbe - результат легкой проверки доступности сайта
type SiteProbe struct {
	URL        string
	StatusCode int
	Title      string
	ElapsedMs  int64
}
