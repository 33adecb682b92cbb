package server

import (
	"net/http"
	"nft-ledger/internal/domain"
	"nft-ledger/internal/service"
	"time"
)

type CardanoServer struct {
	mintingSvc   *service.MintingService
	stakingSvc   *service.StakingService
	allowlistSvc *service.AllowlistService
	walletSvc    *service.WalletService
}

func NewCardanoServer(
	mintingSvc *service.MintingService,
	stakingSvc *service.StakingService,
	allowlistSvc *service.AllowlistService,
	walletSvc *service.WalletService,
) *CardanoServer {
	return &CardanoServer{
		mintingSvc:   mintingSvc,
		stakingSvc:   stakingSvc,
		allowlistSvc: allowlistSvc,
		walletSvc:    walletSvc,
	}
}

// Register mounts every route under /api/cardano on mux.
func (s *CardanoServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/cardano/verify", s.VerifyOwnership)
	mux.HandleFunc("POST /api/cardano/mint", s.Mint)
	mux.HandleFunc("POST /api/cardano/update", s.SyncMetadata)

	mux.HandleFunc("POST /api/cardano/stake", s.Stake)
	mux.HandleFunc("POST /api/cardano/unstake", s.Unstake)
	mux.HandleFunc("GET /api/cardano/staking/{positionId}", s.GetStakingPosition)
	mux.HandleFunc("GET /api/cardano/staking/user/{userId}", s.GetUserStakingPositions)
	mux.HandleFunc("GET /api/cardano/rewards/{positionId}", s.GetPendingRewards)

	mux.HandleFunc("POST /api/cardano/influencer/claim", s.ClaimInfluencerNFT)
	mux.HandleFunc("GET /api/cardano/influencer/allowlist/{wallet}", s.GetAllowlistEntries)
	mux.HandleFunc("POST /api/cardano/admin/allowlist", s.CreateAllowlistEntry)
	mux.HandleFunc("POST /api/cardano/admin/allowlist/{id}/revoke", s.RevokeAllowlistEntry)

	mux.HandleFunc("GET /api/cardano/wallet/{address}", s.GetWallet)
}

type verifyRequest struct {
	WalletAddress    string `json:"wallet_address"`
	AssetFingerprint string `json:"asset_fingerprint"`
}

type verifyResponse struct {
	Verified         bool   `json:"verified"`
	WalletAddress    string `json:"wallet_address"`
	AssetFingerprint string `json:"asset_fingerprint"`
}

func (s *CardanoServer) VerifyOwnership(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.WalletAddress == "" || req.AssetFingerprint == "" {
		writeError(w, r, missing("wallet_address and asset_fingerprint are"))
		return
	}

	verified, err := s.mintingSvc.VerifyOwnership(r.Context(), req.WalletAddress, req.AssetFingerprint)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, verifyResponse{
		Verified:         verified,
		WalletAddress:    req.WalletAddress,
		AssetFingerprint: req.AssetFingerprint,
	})
}

type mintRequest struct {
	UserID          string `json:"user_id"`
	UserCharacterID string `json:"user_character_id"`
	CardSetID       string `json:"card_set_id"`
}

type mintResponse struct {
	Success bool `json:"success"`
	*service.MintResult
}

func (s *CardanoServer) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" || req.UserCharacterID == "" || req.CardSetID == "" {
		writeError(w, r, missing("user_id, user_character_id and card_set_id are"))
		return
	}

	result, err := s.mintingSvc.Mint(r.Context(), req.UserCharacterID, req.UserID, req.CardSetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mintResponse{Success: true, MintResult: result})
}

type syncRequest struct {
	UserCharacterID string `json:"user_character_id"`
}

type syncResponse struct {
	Success bool `json:"success"`
	*service.SyncResult
}

func (s *CardanoServer) SyncMetadata(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserCharacterID == "" {
		writeError(w, r, missing("user_character_id is"))
		return
	}

	result, err := s.mintingSvc.SyncMetadataToChain(r.Context(), req.UserCharacterID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, syncResponse{Success: true, SyncResult: result})
}

type stakeRequest struct {
	UserID          string `json:"user_id"`
	UserCharacterID string `json:"user_character_id"`
	Tier            string `json:"tier"`
}

type stakeResponse struct {
	Success bool `json:"success"`
	*service.StakeResult
}

func (s *CardanoServer) Stake(w http.ResponseWriter, r *http.Request) {
	var req stakeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" || req.UserCharacterID == "" || req.Tier == "" {
		writeError(w, r, missing("user_id, user_character_id and tier are"))
		return
	}
	tier, ok := domain.ParseTier(req.Tier)
	if !ok {
		writeError(w, r, domain.Errorf(domain.CodeInvalidTier, "tier must be one of: BRONZE, SILVER, GOLD, PLATINUM"))
		return
	}

	result, err := s.stakingSvc.Stake(r.Context(), req.UserID, req.UserCharacterID, tier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stakeResponse{Success: true, StakeResult: result})
}

type unstakeRequest struct {
	PositionID string `json:"position_id"`
	UserID     string `json:"user_id"`
}

type unstakeResponse struct {
	Success bool `json:"success"`
	*service.UnstakeResult
}

func (s *CardanoServer) Unstake(w http.ResponseWriter, r *http.Request) {
	var req unstakeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PositionID == "" || req.UserID == "" {
		writeError(w, r, missing("position_id and user_id are"))
		return
	}

	result, err := s.stakingSvc.Unstake(r.Context(), req.PositionID, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, unstakeResponse{Success: true, UnstakeResult: result})
}

type positionResponse struct {
	ID                     string     `json:"id"`
	UserID                 *string    `json:"user_id"`
	UserCharacterID        string     `json:"user_character_id"`
	PolicyID               *string    `json:"policy_id"`
	AssetName              *string    `json:"asset_name"`
	Tier                   string     `json:"tier"`
	Status                 string     `json:"status"`
	StakedAt               time.Time  `json:"staked_at"`
	UnstakedAt             *time.Time `json:"unstaked_at"`
	TotalRewardsAccrued    int64      `json:"total_rewards_accrued"`
	TotalRewardsClaimed    int64      `json:"total_rewards_claimed"`
	LastRewardCalculatedAt time.Time  `json:"last_reward_calculated_at"`
	LastClaimedAt          *time.Time `json:"last_claimed_at"`
	BaseRewardsPerDay      int64      `json:"base_rewards_per_day"`
	XPMultiplier           float64    `json:"xp_multiplier"`
	CharacterName          *string    `json:"character_name"`
	Rarity                 *string    `json:"rarity"`
	Archetype              *string    `json:"archetype"`
	PendingRewards         int64      `json:"pending_rewards"`
	TotalUnclaimedRewards  int64      `json:"total_unclaimed_rewards"`
}

func toPositionResponse(v domain.StakingPositionView) positionResponse {
	return positionResponse{
		ID:                     v.ID,
		UserID:                 v.UserID,
		UserCharacterID:        v.UserCharacterID,
		PolicyID:               v.PolicyID,
		AssetName:              v.AssetName,
		Tier:                   string(v.Tier),
		Status:                 string(v.Status),
		StakedAt:               v.StakedAt,
		UnstakedAt:             v.UnstakedAt,
		TotalRewardsAccrued:    v.TotalRewardsAccrued,
		TotalRewardsClaimed:    v.TotalRewardsClaimed,
		LastRewardCalculatedAt: v.LastRewardCalculatedAt,
		LastClaimedAt:          v.LastClaimedAt,
		BaseRewardsPerDay:      v.BaseRewardsPerDay,
		XPMultiplier:           v.XPMultiplier,
		CharacterName:          v.CharacterName,
		Rarity:                 v.Rarity,
		Archetype:              v.Archetype,
		PendingRewards:         v.PendingRewards,
		TotalUnclaimedRewards:  v.TotalUnclaimedRewards,
	}
}

func (s *CardanoServer) GetStakingPosition(w http.ResponseWriter, r *http.Request) {
	view, err := s.stakingSvc.GetStakingPosition(r.Context(), r.PathValue("positionId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPositionResponse(*view))
}

func (s *CardanoServer) GetUserStakingPositions(w http.ResponseWriter, r *http.Request) {
	views, err := s.stakingSvc.GetUserStakingPositions(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	positions := make([]positionResponse, 0, len(views))
	for _, v := range views {
		positions = append(positions, toPositionResponse(v))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"positions": positions})
}

type pendingRewardsResponse struct {
	PositionID     string `json:"position_id"`
	PendingRewards int64  `json:"pending_rewards"`
}

func (s *CardanoServer) GetPendingRewards(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("positionId")
	pending, err := s.stakingSvc.CalculatePendingRewards(r.Context(), positionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, pendingRewardsResponse{PositionID: positionID, PendingRewards: pending})
}

type claimRequest struct {
	UserID      string `json:"user_id"`
	ClaimCode   string `json:"claim_code"`
	CharacterID string `json:"character_id"`
}

func (s *CardanoServer) ClaimInfluencerNFT(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" || req.ClaimCode == "" {
		writeError(w, r, missing("user_id and claim_code are"))
		return
	}

	result, err := s.allowlistSvc.MintInfluencerNFT(r.Context(), req.UserID, req.ClaimCode, req.CharacterID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mintResponse{Success: true, MintResult: result})
}

type entryResponse struct {
	ID               string     `json:"id"`
	WalletAddress    *string    `json:"wallet_address"`
	CardSetID        *string    `json:"card_set_id"`
	ClaimCode        string     `json:"claim_code"`
	Status           *string    `json:"status"`
	ExpiresAt        time.Time  `json:"expires_at"`
	AllocatedBy      *string    `json:"allocated_by"`
	AllocationReason *string    `json:"allocation_reason"`
	CreatedAt        time.Time  `json:"created_at"`
	ClaimedByUserID  *string    `json:"claimed_by_user_id"`
	ClaimedAt        *time.Time `json:"claimed_at"`
	TxHash           *string    `json:"tx_hash"`
	PolicyID         *string    `json:"policy_id,omitempty"`
	PackName         *string    `json:"pack_name,omitempty"`
}

func toEntryResponse(e domain.AllowlistEntry) entryResponse {
	var status *string
	if e.Status != nil {
		s := string(*e.Status)
		status = &s
	}
	return entryResponse{
		ID:               e.ID,
		WalletAddress:    e.WalletAddress,
		CardSetID:        e.CardSetID,
		ClaimCode:        e.ClaimCode,
		Status:           status,
		ExpiresAt:        e.ExpiresAt,
		AllocatedBy:      e.AllocatedBy,
		AllocationReason: e.AllocationReason,
		CreatedAt:        e.CreatedAt,
		ClaimedByUserID:  e.ClaimedByUserID,
		ClaimedAt:        e.ClaimedAt,
		TxHash:           e.TxHash,
		PolicyID:         e.PolicyID,
		PackName:         e.PackName,
	}
}

func (s *CardanoServer) GetAllowlistEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.allowlistSvc.GetAllowlistEntriesForWallet(r.Context(), r.PathValue("wallet"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": resp})
}

func (s *CardanoServer) CreateAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAllowlistEntryParams
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.allowlistSvc.CreateAllowlistEntry(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toEntryResponse(*entry))
}

func (s *CardanoServer) RevokeAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.allowlistSvc.RevokeAllowlistEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toEntryResponse(*entry))
}

func (s *CardanoServer) GetWallet(w http.ResponseWriter, r *http.Request) {
	summary, err := s.walletSvc.Summary(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
