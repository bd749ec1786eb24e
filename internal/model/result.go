// internal/model/result.go
package model

// CampaignResult accumulates one campaign run. It lives only for the duration
// of the request that started the campaign.
//
// Successful + Failed always equals the number of real send attempts made;
// skipped senders in the rotation path contribute log lines only. Processed
// can be less than Total when rotation runs out of usable senders.
type CampaignResult struct {
	Total      int      `json:"total"`
	Processed  int      `json:"processed"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []string `json:"results"`
}
