package contracts

import "context"

// PortfolioLoader reads the input holdings table
// ⭐ SSOT: 포트폴리오 로딩 인터페이스
type PortfolioLoader interface {
	Load(path string) (*Portfolio, error)
}

// ESGFetcher fetches ESG records for a batch of instruments in one request
// ⭐ SSOT: ESG 데이터 조회 인터페이스
type ESGFetcher interface {
	FetchESG(ctx context.Context, instruments []string) ([]ESGRecord, error)
}
