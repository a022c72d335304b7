package contracts

// Pipeline Stage 정의 (SSOT)
// 로그와 실행 결과에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   Load → Fetch → Merge → Aggregate → Write

// Stage represents a pipeline stage
type Stage string

const (
	// StageLoad 입력 포트폴리오 로딩
	// 위치: internal/portfolio/
	StageLoad Stage = "LOAD"

	// StageFetch 데이터 플랫폼에서 ESG 데이터 조회 (요청 1회)
	// 위치: internal/external/rdp/
	StageFetch Stage = "FETCH"

	// StageMerge Instrument 기준 조인
	// 위치: internal/esg/merge.go
	StageMerge Stage = "MERGE"

	// StageAggregate 커버리지, 순위, 지역/국가 통계
	// 위치: internal/esg/aggregator.go
	StageAggregate Stage = "AGGREGATE"

	// StageWrite 엑셀 리포트 저장
	// 위치: internal/report/
	StageWrite Stage = "WRITE"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageLoad:
		return "포트폴리오 로딩"
	case StageFetch:
		return "ESG 데이터 조회"
	case StageMerge:
		return "종목 매칭"
	case StageAggregate:
		return "ESG 집계"
	case StageWrite:
		return "리포트 저장"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageLoad,
		StageFetch,
		StageMerge,
		StageAggregate,
		StageWrite,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}
