package routing

import (
	"context"

	"go.uber.org/zap"

	"recipe-bot/internal/core/format"
	"recipe-bot/internal/core/message"
	"recipe-bot/internal/pkg/common"
)

// ReasonNoMessageData 沒有可解析訊息時的忽略原因
const ReasonNoMessageData = "no message data"

// SessionContext 提供使用者上一筆食譜 ID，用於 more 選項
type SessionContext interface {
	LastRecipeID(ctx context.Context, platform message.Platform, sender string) (string, error)
}

// InteractionHandler 處理按鈕與清單回覆，ok 為 false 時視為忽略
type InteractionHandler interface {
	HandleInteraction(ctx context.Context, intent *message.ParsedIntent) (Action, bool)
}

// Router 意圖路由
type Router struct {
	messages     format.Messages
	sessions     SessionContext
	interactions InteractionHandler
}

// Option 路由選項
type Option func(*Router)

// WithSessionContext 啟用以 session 為基礎的 more 選項
func WithSessionContext(s SessionContext) Option {
	return func(r *Router) {
		r.sessions = s
	}
}

// WithInteractionHandler 註冊按鈕與清單處理器
func WithInteractionHandler(h InteractionHandler) Option {
	return func(r *Router) {
		r.interactions = h
	}
}

// NewRouter 建立路由
func NewRouter(messages format.Messages, opts ...Option) *Router {
	r := &Router{messages: messages}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route 依意圖決定動作，intent 為 nil 時忽略
func (r *Router) Route(ctx context.Context, intent *message.ParsedIntent) Action {
	if intent == nil {
		return Ignored{Reason: ReasonNoMessageData}
	}

	switch intent.Kind {
	case message.KindStart:
		return ImmediateReply{Text: r.messages.Welcome}
	case message.KindHelp:
		return ImmediateReply{Text: r.messages.Help}
	case message.KindEmpty:
		return ImmediateReply{Text: r.messages.Empty}
	case message.KindNoIngredients:
		return ImmediateReply{Text: r.messages.NoIngredients}
	case message.KindUnsupported:
		return ImmediateReply{Text: r.messages.Unsupported}
	case message.KindMoreOptions:
		return ImmediateReply{Text: r.messages.MoreOptionsFor(r.lastRecipeID(ctx, intent))}
	case message.KindThankYou:
		return ImmediateReply{Text: r.messages.ThankYou}
	case message.KindGoodbye:
		return ImmediateReply{Text: r.messages.Goodbye}
	case message.KindHowAreYou:
		return ImmediateReply{Text: r.messages.HowAreYou}
	case message.KindCapabilities:
		return ImmediateReply{Text: r.messages.Capabilities}
	case message.KindPaymentConfirmation:
		return ImmediateReply{Text: r.messages.PaymentConfirmation}
	case message.KindPaymentRequest:
		return r.deferred(JobCreatePayment, intent)
	case message.KindPaymentStatus:
		return r.deferred(JobFetchPaymentHistory, intent)
	case message.KindAccountInfo:
		return r.deferred(JobFetchAccount, intent)
	case message.KindRecipeRequest:
		if intent.Recipe == nil || len(intent.Recipe.Ingredients) == 0 {
			return ImmediateReply{Text: r.messages.NoIngredients}
		}
		d := r.deferred(JobGenerateRecipe, intent)
		d.Args = intent.Recipe
		return d
	case message.KindButtonInteraction, message.KindListInteraction:
		if r.interactions != nil {
			if action, ok := r.interactions.HandleInteraction(ctx, intent); ok {
				return action
			}
		}
		return Ignored{Reason: "unhandled " + intent.Kind.String()}
	}

	return Ignored{Reason: ReasonNoMessageData}
}

func (r *Router) deferred(job Job, intent *message.ParsedIntent) Deferred {
	return Deferred{Job: job, Platform: intent.Platform, Sender: intent.Sender}
}

// lastRecipeID session 查詢失敗時回退為一般訊息
func (r *Router) lastRecipeID(ctx context.Context, intent *message.ParsedIntent) string {
	if r.sessions == nil {
		return ""
	}
	id, err := r.sessions.LastRecipeID(ctx, intent.Platform, intent.Sender)
	if err != nil {
		common.LogWarn("Session lookup failed",
			zap.String("platform", string(intent.Platform)),
			zap.Error(err),
		)
		return ""
	}
	return id
}
