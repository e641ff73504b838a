package constants

const (
	CHANNEL_SIZE        = 100             // 通道大小
	IMAGE_MAX_SIZE      = 5 * 1024 * 1024 // 头像/图片最大大小（字节），5MB
	TOKEN_HEADER        = "token"         // 认证 token 所在的请求头
	TOKEN_EXPIRY_HOURS  = 168             // token 有效期（小时），168小时 = 7天
	DEFAULT_BACKEND_URL = "http://localhost:5000"
	DEFAULT_TOKEN_KEY   = "kama_chat:token" // 本地持久化 token 的键名
)

// 推送通道相关
const (
	WS_PATH            = "/ws"            // 推送通道路径
	WS_USER_ID_QUERY   = "userId"         // 握手时携带用户身份的查询参数
	EVENT_ONLINE_USERS = "getOnlineUsers" // 在线用户名单（全量）
	EVENT_NEW_MESSAGE  = "newMessage"     // 新消息
)
